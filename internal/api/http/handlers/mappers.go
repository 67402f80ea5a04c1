package handlers

import (
	"github.com/spec-kit/hotel-service/internal/api/dto"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/service"
)

func authResponse(session *service.Session) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
		ExpiresIn: int64(session.ExpiresIn.Seconds()),
	}
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

func staffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      staff.Role,
		Status:    staff.Status,
		CreatedAt: staff.CreatedAt,
	}
}

func roomResponse(room *domain.Room) dto.RoomResponse {
	images := make([]dto.RoomImageResponse, 0, len(room.Images))
	for i := range room.Images {
		images = append(images, roomImageResponse(&room.Images[i]))
	}
	return dto.RoomResponse{
		ID:            room.ID,
		Number:        room.Number,
		Type:          room.Type,
		Description:   room.Description,
		PricePerNight: room.PricePerNight,
		Capacity:      room.Capacity,
		Status:        room.Status,
		LastCleanedAt: room.LastCleanedAt,
		Images:        images,
	}
}

func roomImageResponse(img *domain.RoomImage) dto.RoomImageResponse {
	return dto.RoomImageResponse{ID: img.ID, URL: img.URL, Width: img.Width, Height: img.Height}
}

func bookingResponse(b *domain.Booking) dto.BookingResponse {
	return dto.BookingResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		RoomID:    b.RoomID,
		CheckIn:   b.CheckIn,
		CheckOut:  b.CheckOut,
		Guests:    b.Guests,
		Nights:    b.Nights(),
		Status:    b.Status,
		Total:     b.Total,
		CreatedAt: b.CreatedAt,
	}
}

func menuItemResponse(item *domain.MenuItem) dto.MenuItemResponse {
	return dto.MenuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       item.Price,
		Available:   item.Available,
	}
}

func orderResponse(o *domain.Order, delivery *domain.Task) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			MenuItemID: it.MenuItemID,
			Name:       it.Name,
			UnitPrice:  it.UnitPrice,
			Quantity:   it.Quantity,
		})
	}
	resp := dto.OrderResponse{
		ID:             o.ID,
		BookingID:      o.BookingID,
		RoomID:         o.RoomID,
		Items:          items,
		Total:          o.Total,
		Notes:          o.Notes,
		Status:         o.Status,
		DeliveryTaskID: o.DeliveryTaskID,
		CreatedAt:      o.CreatedAt,
	}
	if delivery != nil {
		task := taskResponse(delivery)
		resp.Delivery = &task
	}
	return resp
}

func taskResponse(t *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:              t.ID,
		Kind:            t.Kind,
		AssigneeStaffID: t.AssigneeID,
		Status:          t.Status,
		RoomID:          t.RoomID,
		OrderID:         t.OrderID,
		Description:     t.Description,
		ScheduledFor:    t.ScheduledFor,
		CompletedAt:     t.CompletedAt,
		CreatedAt:       t.CreatedAt,
	}
}

func taskList(tasks []domain.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskResponse(&tasks[i]))
	}
	return out
}

func historyResponse(h *domain.TaskHistory) dto.TaskHistoryResponse {
	return dto.TaskHistoryResponse{
		ID:            h.ID,
		ChangeType:    h.ChangeType,
		ChangedByType: h.ChangedByType,
		ChangedByID:   h.ChangedByID,
		OldValue:      h.OldValue,
		NewValue:      h.NewValue,
		CreatedAt:     h.CreatedAt,
	}
}

func chatResponse(m *domain.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:         m.ID,
		BookingID:  m.BookingID,
		AuthorType: m.AuthorType,
		AuthorID:   m.AuthorID,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
	}
}

func notificationResponse(n *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:            n.ID,
		Recipient:     n.Recipient,
		Subject:       n.Subject,
		Status:        n.Status,
		Attempts:      n.Attempts,
		LastError:     n.LastError,
		NextAttemptAt: n.NextAttemptAt,
		SentAt:        n.SentAt,
		CreatedAt:     n.CreatedAt,
	}
}
