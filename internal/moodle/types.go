package moodle

// User is the record returned by core_user_get_users_by_field and
// core_user_get_users. Moodle maps "Phone" to phone1 and "Mobile phone"
// to phone2.
type User struct {
	ID              int64         `json:"id"`
	Username        string        `json:"username"`
	FullName        string        `json:"fullname"`
	Email           string        `json:"email"`
	Description     string        `json:"description"`
	ProfileImageURL string        `json:"profileimageurl"`
	Phone1          string        `json:"phone1"`
	Phone2          string        `json:"phone2"`
	CustomFields    []CustomField `json:"customfields"`
}

// CustomField is an admin-configured user attribute. The set of shortnames
// and display names is not under this client's control.
type CustomField struct {
	ShortName string `json:"shortname"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

// Course is an enrolment record from core_enrol_get_users_courses.
// Progress is absent on older sites, so it stays a pointer.
type Course struct {
	ID        int64    `json:"id"`
	FullName  string   `json:"fullname"`
	ShortName string   `json:"shortname"`
	Summary   string   `json:"summary"`
	StartDate int64    `json:"startdate"`
	Progress  *float64 `json:"progress"`
	Completed bool     `json:"completed"`
}

// Section and Module form the content tree returned by
// core_course_get_contents.
type Section struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Modules []Module `json:"modules"`
}

type Module struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	ModName string `json:"modname"`
	URL     string `json:"url"`
	// Completion is the tracking mode: 0 means the module is not tracked.
	Completion     int             `json:"completion"`
	CompletionData *CompletionData `json:"completiondata"`
}

type CompletionData struct {
	State int `json:"state"`
}

type Badge struct {
	Name string `json:"name"`
}

type profileImagesResponse struct {
	ProfileImageURLs []ProfileImage `json:"profileimageurls"`
}

// ProfileImage carries the avatar size variants for one user, keyed by
// strings like "size_50", "size_100".
type ProfileImage struct {
	UserID int64             `json:"userid"`
	URLs   map[string]string `json:"urls"`
}

type badgesResponse struct {
	Badges []Badge `json:"badges"`
}

type usersResponse struct {
	Users []User `json:"users"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	Error     string `json:"error"`
	ErrorCode string `json:"errorcode"`
}

// wsFault probes a decoded body for Moodle's error markers.
type wsFault struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}
