package handler

import (
	"time"

	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/service"
)

// UserRefDTO is the JSON representation of a joined user.
type UserRefDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func toUserRefDTO(u *domain.UserRef) *UserRefDTO {
	if u == nil {
		return nil
	}
	return &UserRefDTO{ID: u.ID, Name: u.Name}
}

// UserDTO is the JSON representation of the authenticated user.
type UserDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	ManageUsers bool   `json:"manageUsers"`
	CreatedAt   string `json:"createdAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Name:        u.Name(),
		ManageUsers: u.Perms.ManageUsers,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// TimeDTO carries an instant together with its display strings.
type TimeDTO struct {
	At       string `json:"at"`
	Date     string `json:"date"`
	FullDate string `json:"fullDate"`
	Time     string `json:"time"`
}

func toTimeDTO(t service.FormattedTime) TimeDTO {
	return TimeDTO{
		At:       t.Time.Format(time.RFC3339),
		Date:     t.Date,
		FullDate: t.FullDate,
		Time:     t.Clock,
	}
}

// MyRegistrationDTO is the caller's own registration for an event.
type MyRegistrationDTO struct {
	ID        int64 `json:"id"`
	Attending bool  `json:"attending"`
}

func toMyRegistrationDTO(m *domain.MyRegistration) *MyRegistrationDTO {
	if m == nil {
		return nil
	}
	return &MyRegistrationDTO{ID: m.ID, Attending: m.Attending}
}

// RegistrationDTO is the JSON representation of a registration.
type RegistrationDTO struct {
	ID        int64       `json:"id"`
	EventID   int64       `json:"eventId"`
	UserID    int64       `json:"userId"`
	User      *UserRefDTO `json:"user,omitempty"`
	CreatedBy int64       `json:"createdBy"`
	CreatedAt string      `json:"createdAt"`
	Attending bool        `json:"attending"`
}

func toRegistrationDTO(r *domain.Registration) RegistrationDTO {
	return RegistrationDTO{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		User:      toUserRefDTO(r.User),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		Attending: r.Attending,
	}
}

// RegistrationPageDTO is a page of registrations with the matching total.
type RegistrationPageDTO struct {
	Items []RegistrationDTO `json:"items"`
	Total int               `json:"total"`
}

func toRegistrationPageDTO(p domain.RegistrationPage) RegistrationPageDTO {
	dto := RegistrationPageDTO{Items: make([]RegistrationDTO, len(p.Items)), Total: p.Total}
	for i := range p.Items {
		dto.Items[i] = toRegistrationDTO(&p.Items[i])
	}
	return dto
}

// FeedItemDTO is the JSON representation of a feed item.
type FeedItemDTO struct {
	ID        int64       `json:"id"`
	Text      string      `json:"text"`
	CreatedBy *UserRefDTO `json:"createdBy"`
	Created   TimeDTO     `json:"created"`
}

// FeedDTO is the newest page of an event's feed.
type FeedDTO struct {
	Items []FeedItemDTO `json:"items"`
	Total int           `json:"total"`
}

func toFeedDTO(f service.FeedView) FeedDTO {
	dto := FeedDTO{Items: make([]FeedItemDTO, len(f.Items)), Total: f.Total}
	for i, item := range f.Items {
		dto.Items[i] = FeedItemDTO{
			ID:        item.ID,
			Text:      item.Text,
			CreatedBy: toUserRefDTO(item.CreatedBy),
			Created:   toTimeDTO(item.Created),
		}
	}
	return dto
}

// EventDTO is the JSON representation of an event detail.
type EventDTO struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Start          TimeDTO             `json:"start"`
	Created        TimeDTO             `json:"created"`
	Owner          *UserRefDTO         `json:"owner"`
	CreatedBy      *UserRefDTO         `json:"createdBy"`
	MyRegistration *MyRegistrationDTO  `json:"myRegistration"`
	Attendees      []string            `json:"attendees"`
	AttendingTotal int                 `json:"attendingTotal"`
	Registrations  RegistrationPageDTO `json:"registrations"`
	Feed           FeedDTO             `json:"feed"`
}

func toEventDTO(d *service.EventDetail) EventDTO {
	return EventDTO{
		ID:             d.ID,
		Name:           d.Name,
		Description:    d.Description,
		Start:          toTimeDTO(d.Start),
		Created:        toTimeDTO(d.Created),
		Owner:          toUserRefDTO(d.Owner),
		CreatedBy:      toUserRefDTO(d.CreatedBy),
		MyRegistration: toMyRegistrationDTO(d.MyRegistration),
		Attendees:      d.Attendees,
		AttendingTotal: d.AttendingTotal,
		Registrations:  toRegistrationPageDTO(d.Registrations),
		Feed:           toFeedDTO(d.Feed),
	}
}
