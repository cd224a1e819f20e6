package models

import "github.com/uptrace/bun"

// MaxHintFieldLength is the column width of question and reply; the services
// reject longer values before touching the database.
const MaxHintFieldLength = 100

// Hint is one chatbot hint record.
type Hint struct {
	bun.BaseModel `bun:"table:chatbot_hints,alias:h"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Question string `bun:"question,notnull" json:"question"`
	Reply    string `bun:"reply,notnull" json:"reply"`
}
