package dto

// NotifyCoursesRequest asks for a notification batch over a set of courses.
type NotifyCoursesRequest struct {
	Template  string   `json:"template" validate:"required,max=1024"`
	CourseIDs []uint   `json:"course_ids" validate:"required,min=1"`
	Groups    []string `json:"groups" validate:"required,min=1,dive,oneof=responsible contributors editors all_participants due_participants"`
}

// ReminderRequest asks for a voting reminder to one user.
type ReminderRequest struct {
	UserID       uint   `json:"user_id" validate:"required"`
	DaysLeft     int    `json:"days_left" validate:"min=0"`
	DueCourseIDs []uint `json:"due_course_ids" validate:"required,min=1"`
}

// NotificationDispatchResponse reports how a notification batch went.
type NotificationDispatchResponse struct {
	Template  string `json:"template"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
}

// RecipientResponse is one entry of the recipient-to-courses mapping.
type RecipientResponse struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CourseIDs []uint `json:"course_ids"`
}
