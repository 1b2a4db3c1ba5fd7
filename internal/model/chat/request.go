package chat

// CompletionRequest is the bounded input of one completion call.
type CompletionRequest struct {
	Instruction string
	CatalogText string
	History     []Turn
	Message     string
}
