package usecase

import (
	"context"

	"lumiere/internal/domain/model"
	repo "lumiere/internal/repository"
)

// ステータス変更1件ぶんの記録内容
type StatusChange struct {
	OrderID     int64
	UserID      int64
	StatusID    *int64
	OldStatus   string
	NewStatus   string
	ChangedByID *int64
}

// StatusTracker は注文ステータスの履歴と通知を揃えて残す。
// 履歴と通知は必ず同じトランザクションのリポジトリで書くこと。
type StatusTracker struct{}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// 変更を記録する。同じラベルへの「変更」は何も書かない（再送対策）。
func (t *StatusTracker) Record(
	ctx context.Context,
	history repo.StatusHistoryRepository,
	notifications repo.NotificationRepository,
	change StatusChange,
) error {
	if change.OldStatus == change.NewStatus {
		return nil
	}

	if err := history.Create(ctx, model.OrderStatusHistory{
		OrderID:     change.OrderID,
		StatusID:    change.StatusID,
		StatusName:  change.NewStatus,
		ChangedByID: change.ChangedByID,
	}); err != nil {
		return err
	}

	return notifications.Create(ctx, model.OrderNotification{
		OrderID:   change.OrderID,
		UserID:    change.UserID,
		OldStatus: change.OldStatus,
		NewStatus: change.NewStatus,
	})
}

// 注文作成時の初回記録。旧ステータスは擬似ラベル「Создан」。
func (t *StatusTracker) RecordCreation(
	ctx context.Context,
	history repo.StatusHistoryRepository,
	notifications repo.NotificationRepository,
	orderID int64,
	userID int64,
	statusID *int64,
	statusName string,
) error {
	return t.Record(ctx, history, notifications, StatusChange{
		OrderID:   orderID,
		UserID:    userID,
		StatusID:  statusID,
		OldStatus: model.StatusCreatedLabel,
		NewStatus: statusName,
	})
}
