package handler

import (
	"github.com/eventhub/events-api/internal/core/domain"
	"github.com/eventhub/events-api/internal/core/ports"
)

// --- Service result → HTTP response ---

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Roles:     orEmpty(u.Roles),
		Attendees: orEmpty(u.Attendees),
		Events:    orEmpty(u.Events),
		Favorites: orEmpty(u.Favorites),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toLoginUserResponse(u *domain.User) loginUserResponse {
	return loginUserResponse{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		Roles:     orEmpty(u.Roles),
		Favorites: orEmpty(u.Favorites),
	}
}

func toFavoriteResponses(favs []ports.FavoriteEvent) []favoriteEventResponse {
	out := make([]favoriteEventResponse, 0, len(favs))
	for _, f := range favs {
		out = append(out, favoriteEventResponse{
			ID:       f.ID,
			Title:    f.Title,
			Date:     f.Date,
			Img:      f.Img,
			Location: f.Location,
		})
	}
	return out
}

func toProfileResponse(p ports.UserProfile) profileResponse {
	attendances := make([]profileAttendanceResponse, 0, len(p.Attendances))
	for _, a := range p.Attendances {
		attendances = append(attendances, profileAttendanceResponse{
			ID:        a.ID,
			Event:     attendanceEventResponse{ID: a.EventID, Title: a.EventTitle, Date: a.EventDate},
			CreatedAt: a.CreatedAt,
		})
	}
	return profileResponse{
		ID:          p.ID,
		UserName:    p.UserName,
		Email:       p.Email,
		Roles:       orEmpty(p.Roles),
		Favorites:   toFavoriteResponses(p.Favorites),
		Attendances: attendances,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toEventBase(v *ports.EventView) eventBase {
	return eventBase{
		ID:          v.ID,
		Title:       v.Title,
		Category:    string(v.Category),
		Date:        v.Date,
		Location:    v.Location,
		Description: v.Description,
		Price:       v.Price,
		Creator:     userRefResponse{ID: v.Creator.ID, UserName: v.Creator.UserName},
		Img:         v.Img,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toEventResponse(v *ports.EventView) eventResponse {
	attendees := make([]userRefResponse, 0, len(v.Attendees))
	for _, a := range v.Attendees {
		attendees = append(attendees, userRefResponse{ID: a.ID, UserName: a.UserName})
	}
	return eventResponse{eventBase: toEventBase(v), Attendees: attendees}
}

func toEventResponses(views []ports.EventView) []eventResponse {
	out := make([]eventResponse, 0, len(views))
	for i := range views {
		out = append(out, toEventResponse(&views[i]))
	}
	return out
}

// toEventViewFor shapes an event for caller: admins see who attends,
// everybody else only how many.
func toEventViewFor(v *ports.EventView, caller *domain.User) any {
	if caller.IsAdmin() {
		return toEventResponse(v)
	}
	return eventCountResponse{eventBase: toEventBase(v), AttendeeCount: len(v.Attendees)}
}

func toAttendeeResponse(a *domain.Attendee) attendeeResponse {
	return attendeeResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		EventID:   a.EventID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAttendeeResponses(list []*domain.Attendee) []attendeeResponse {
	out := make([]attendeeResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAttendeeResponse(a))
	}
	return out
}

func toEventAttendeeResponses(list []*domain.Attendee) []eventAttendeeResponse {
	out := make([]eventAttendeeResponse, 0, len(list))
	for _, a := range list {
		out = append(out, eventAttendeeResponse{
			ID:        a.ID,
			User:      userRefResponse{ID: a.UserID, UserName: a.UserName},
			EventID:   a.EventID,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return out
}
