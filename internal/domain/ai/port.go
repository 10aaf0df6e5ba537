package ai

import "context"

// Image is the payload sent next to the prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Client is a multimodal model that answers a prompt about one image.
type Client interface {
	Analyze(ctx context.Context, prompt string, img Image) (string, error)
}
