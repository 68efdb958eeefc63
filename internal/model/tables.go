package model

const UsersTable = "Users"

// UserItem is the subset of the social backend's user record the signaling
// server reads for display-name resolution.
type UserItem struct {
	UserID    string `dynamodbav:"userId"`
	Email     string `dynamodbav:"email"`
	Name      string `dynamodbav:"name"`
	Username  string `dynamodbav:"username,omitempty"`
	Avatar    string `dynamodbav:"avatar,omitempty"`
	UpdatedAt string `dynamodbav:"updatedAt,omitempty"`
}
