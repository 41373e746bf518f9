package request

type Withdraw struct {
	Password string `json:"password" binding:"required"`
}
