package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	case ChatHistoryResult:
		o.printChatHistory(v)
	case HiddenWordsResult:
		o.printHiddenWords(v)
	default:
		o.printJSON(data)
	}
}

func (o *Output) printChatHistory(v ChatHistoryResult) {
	if len(v.Messages) == 0 {
		fmt.Println("No messages in the current window")
		return
	}
	for _, msg := range v.Messages {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Username, msg.Message)
	}
}

func (o *Output) printHiddenWords(v HiddenWordsResult) {
	if len(v.Words) == 0 {
		fmt.Println("Block-list is empty")
		return
	}
	for _, w := range v.Words {
		fmt.Printf("%-20s added by %s at %s\n", w.Word, w.AddedBy, w.AddedAt.Format(time.RFC3339))
	}
}

// HealthResult matches the health response
type HealthResult struct {
	Status string `json:"status"`
}

// ChatMessage matches a global chat entry
type ChatMessage struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	PhotoURL  string    `json:"photoUrl"`
	Role      string    `json:"role"`
}

// ChatHistoryResult matches the chat history response
type ChatHistoryResult struct {
	Messages []ChatMessage `json:"messages"`
}

// HiddenWord matches a block-list entry
type HiddenWord struct {
	Word    string    `json:"word"`
	AddedBy string    `json:"addedBy"`
	AddedAt time.Time `json:"addedAt"`
}

// HiddenWordsResult matches the block-list response
type HiddenWordsResult struct {
	Words []HiddenWord `json:"words"`
}
