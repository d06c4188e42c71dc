package dto

// SemesterCourseOverview summarizes one course for the staff overview.
type SemesterCourseOverview struct {
	CourseID        uint     `json:"course_id"`
	Name            string   `json:"name"`
	State           string   `json:"state"`
	StudentState    string   `json:"student_state"`
	NumParticipants int      `json:"num_participants"`
	NumVoters       int      `json:"num_voters"`
	IsArchived      bool     `json:"is_archived"`
	MeetsQuorum     bool     `json:"meets_quorum"`
	Warnings        []string `json:"warnings"`
}

// SemesterOverview summarizes a semester and its courses.
type SemesterOverview struct {
	SemesterID    uint                     `json:"semester_id"`
	Name          string                   `json:"name"`
	IsArchived    bool                     `json:"is_archived"`
	IsArchiveable bool                     `json:"is_archiveable"`
	Courses       []SemesterCourseOverview `json:"courses"`
}
