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
	case Account:
		o.printAccount(v)
	case SecretList:
		o.printSecretList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Username  string    `json:"username,omitempty"`
	HasSecret bool      `json:"has_secret"`
	Secret    *string   `json:"secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SecretList response type
type SecretList struct {
	Secrets []string `json:"secrets"`
	Count   int      `json:"count"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Server  string `json:"server,omitempty"`
	Latency string `json:"latency,omitempty"`
}

func (o *Output) printAccount(a Account) {
	name := a.Username
	if name == "" {
		name = a.Provider + " account"
	}
	fmt.Printf("Account: %s (%s)\n", name, a.ID)
	fmt.Printf("Provider: %s\n", a.Provider)
	if a.Secret != nil {
		fmt.Printf("Secret: %s\n", *a.Secret)
	} else {
		fmt.Println("Secret: none")
	}
}

func (o *Output) printSecretList(l SecretList) {
	if l.Count == 0 {
		fmt.Println("No secrets yet.")
		return
	}
	fmt.Printf("Secrets (%d):\n", l.Count)
	for _, s := range l.Secrets {
		fmt.Printf("  - %s\n", s)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	if h.Server != "" {
		fmt.Printf("Server: %s (%s)\n", h.Server, h.Latency)
	}
}
