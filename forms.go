package user

// LoginData is validated by LoginModule on both frontend and backend.
type LoginData struct {
	Email    string
	Password string
}

// RegisterData is validated by RegisterModule.
type RegisterData struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// ProfileData is validated by ProfileModule. It carries the contact fields
// of a ProfileUpdate; address and the role flags are free-form.
type ProfileData struct {
	Name  string
	Email string
	Phone string
}

// EmailData and PhoneData validate single fields of a ProfileUpdate: the
// update accepts any non-empty name and an empty phone, which the full
// contact form would reject.
type EmailData struct {
	Email string
}

type PhoneData struct {
	Phone string
}

// PasswordData is validated by ProfileModule (password change sub-form).
type PasswordData struct {
	Current string
	New     string
	Confirm string
}

// ProfileUpdate is the body of PUT users/profile/update.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsTasker bool   `json:"isTasker"`
	IsActive bool   `json:"isActive"`
}

// PasswordUpdate is the body of PUT users/profile/password.
// CurrentPassword is omitted when setting a first password.
type PasswordUpdate struct {
	CurrentPassword *string `json:"currentPassword,omitempty"`
	NewPassword     string  `json:"newPassword"`
}

// PictureUpdate is the body of PUT users/profile.
type PictureUpdate struct {
	ProfilePicture string `json:"profilePicture"`
}

// userEnvelope is the {user: ...} shape returned by the profile endpoints.
type userEnvelope struct {
	User *User `json:"user,omitempty"`
}

// messageBody is the {message: ...} shape of failures and of the password
// endpoint's success response.
type messageBody struct {
	Message string `json:"message,omitempty"`
}
