package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

// NumTokens estimates the token count of text for usage metadata when the
// provider response does not report it.
func NumTokens(text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel("gpt-4-0613")
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
