// ABOUTME: Gmail tool provider: exposes a single send_gmail_message capability.
// ABOUTME: Sends RFC 822 HTML mail through the Gmail REST API with the user's OAuth token.

package agents

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/docketry/docket-gateway/internal/tool"
)

const gmailDefaultBaseURL = "https://gmail.googleapis.com"

const sendMessageSchema = `{
	"type": "object",
	"properties": {
		"to": {"type": "string", "description": "Recipient email address"},
		"subject": {"type": "string", "description": "Email subject line"},
		"message": {"type": "string", "description": "Email body. Will be sent as HTML."}
	},
	"required": ["to", "subject", "message"]
}`

// GmailProvider offers email sending on behalf of one user.
type GmailProvider struct {
	token      *oauth2.Token
	baseURL    string
	httpClient *http.Client
}

// NewGmailProvider binds a provider to the user's OAuth token. baseURL and
// httpClient default when zero-valued; tests override both.
func NewGmailProvider(token *oauth2.Token, baseURL string, httpClient *http.Client) *GmailProvider {
	if baseURL == "" {
		baseURL = gmailDefaultBaseURL
	}
	if httpClient == nil {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(token))
	}
	return &GmailProvider{token: token, baseURL: baseURL, httpClient: httpClient}
}

// Discover returns the send tool. Gmail is send-only here; reading mail is
// out of scope for the assistant.
func (p *GmailProvider) Discover(ctx context.Context) ([]tool.Tool, error) {
	return []tool.Tool{{
		Name:        "send_gmail_message",
		Description: "Send an email from the user's Gmail account. The message body is delivered as HTML.",
		InputSchema: sendMessageSchema,
		Handler:     p.send,
	}}, nil
}

type sendMessageInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (p *GmailProvider) send(ctx context.Context, input json.RawMessage) (*tool.Result, error) {
	var in sendMessageInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("decoding send input: %w", err)
	}
	if in.To == "" || in.Subject == "" {
		return &tool.Result{Content: "Error: 'to' and 'subject' are required."}, nil
	}

	raw := fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		in.To, in.Subject, in.Message)
	body, err := json.Marshal(map[string]string{
		"raw": base64.URLEncoding.EncodeToString([]byte(raw)),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/gmail/v1/users/me/messages/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading send response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sending email: gmail returned %d", resp.StatusCode)
	}

	id := gjson.GetBytes(respBody, "id").String()
	return &tool.Result{Content: fmt.Sprintf("Email sent successfully to %s. Message id: %s", in.To, id)}, nil
}
