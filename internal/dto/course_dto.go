package dto

import "time"

// TransitionRequest asks for a lifecycle transition on a course.
type TransitionRequest struct {
	Transition string `json:"transition" validate:"required,max=64"`
}

// LifecycleEventResponse is the event a successful transition emits, handed
// back to the caller instead of being broadcast implicitly.
type LifecycleEventResponse struct {
	Transition string    `json:"transition"`
	NewState   string    `json:"new_state"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewLifecycleEventResponse builds the event DTO.
func NewLifecycleEventResponse(transition, newState string, occurredAt time.Time) LifecycleEventResponse {
	return LifecycleEventResponse{
		Transition: transition,
		NewState:   newState,
		OccurredAt: occurredAt,
	}
}

// TransitionResult reports the outcome of a successful transition.
type TransitionResult struct {
	CourseID   uint                   `json:"course_id"`
	Transition string                 `json:"transition"`
	NewState   string                 `json:"new_state"`
	Event      LifecycleEventResponse `json:"event"`
}

// CourseQueries bundles the guard-independent derived queries of a course.
type CourseQueries struct {
	CourseID         uint     `json:"course_id"`
	State            string   `json:"state"`
	StudentState     string   `json:"student_state"`
	CanStaffEdit     bool     `json:"can_staff_edit"`
	CanStaffDelete   bool     `json:"can_staff_delete"`
	CanStaffReview   bool     `json:"can_staff_review"`
	CanStaffApprove  bool     `json:"can_staff_approve"`
	CanPublishGrades bool     `json:"can_publish_grades"`
	Warnings         []string `json:"warnings"`
}

// CourseResults carries the visible answer sets of a course.
type CourseResults struct {
	CourseID        uint                 `json:"course_id"`
	State           string               `json:"state"`
	NumParticipants int                  `json:"num_participants"`
	NumVoters       int                  `json:"num_voters"`
	MeetsQuorum     bool                 `json:"meets_quorum"`
	TextAnswers     []TextAnswerResponse `json:"text_answers,omitempty"`
	LikertAverages  map[uint]float64     `json:"likert_averages,omitempty"`
	GradeAverages   map[uint]float64     `json:"grade_averages,omitempty"`
}
