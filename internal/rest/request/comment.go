package request

// Comment is the body of comment and sub-comment create/update.
type Comment struct {
	Content string `json:"content" binding:"required,notblank,max=1000"`
}
