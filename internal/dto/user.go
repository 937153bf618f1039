package dto

// CredentialsForm is the body for POST /login and POST /register.
type CredentialsForm struct {
	Username string `form:"username" json:"username" binding:"required,min=1,max=120"`
	Password string `form:"password" json:"password" binding:"required,min=1"`
}
