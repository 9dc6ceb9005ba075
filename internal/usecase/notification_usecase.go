package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	repo "lumiere/internal/repository"
)

type NotificationUsecase struct {
	notifications repo.NotificationRepository
}

func NewNotificationUsecase(notifications repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

type NotificationResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int                    `json:"unread_count"`
}

// 自分の通知一覧（新しい順）
func (u *NotificationUsecase) List(ctx context.Context, userID int64) (NotificationListResponse, error) {
	if userID <= 0 {
		return NotificationListResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rows, err := u.notifications.ListByUserID(ctx, userID)
	if err != nil {
		return NotificationListResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resp := make([]NotificationResponse, 0, len(rows))
	unread := 0
	for _, n := range rows {
		if !n.IsRead {
			unread++
		}
		resp = append(resp, NotificationResponse{
			ID:        n.ID,
			OrderID:   n.OrderID,
			OldStatus: n.OldStatus,
			NewStatus: n.NewStatus,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}

	return NotificationListResponse{Notifications: resp, UnreadCount: unread}, nil
}

// 既読にする。他人の通知は存在ごと隠す（404）。
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID int64, notificationID int64) error {
	if userID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if notificationID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.notifications.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
