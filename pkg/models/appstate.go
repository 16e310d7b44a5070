package models

import (
	"github.com/getsema/sema/config"
)

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	EmbeddingStore EmbeddingStore
	Librarian      Librarian
	ContentSteward ContentSteward
	Config         *config.Config
}
