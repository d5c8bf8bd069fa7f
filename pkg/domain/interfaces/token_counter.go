package interfaces

// TokenCounter estimates the number of tokens in text
type TokenCounter interface {
	CountTokens(text string) int
}
