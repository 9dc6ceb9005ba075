package model

import "time"

// 注文作成、注文ステータス更新など。
type AuditAction string

const (
	//注文を作成した操作。
	AuditActionCreateOrder AuditAction = "CREATE_ORDER"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

// 何に対する操作か
type AuditResourceType string

const (
	//注文に対する操作。
	AuditResourceOrder AuditResourceType = "order"

	//商品バリアントに対する操作。
	AuditResourceVariant AuditResourceType = "variant"
)

// 監査ログ。書き込み失敗は注文処理を失敗させない（fire-and-forget）。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。システム起点の場合はnil。
	ActorUserID *int64 `gorm:"index" json:"actor_user_id,omitempty"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
