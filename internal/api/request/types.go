package request

// AddHiddenWord is the body for adding a word to the moderation block-list
type AddHiddenWord struct {
	Word string `json:"word"`
}
