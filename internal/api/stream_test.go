package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

// chunkLine builds one streamed response line in the positional wire format:
// an envelope array whose entry carries the JSON-encoded body at index 2.
func chunkLine(t *testing.T, metadata []string, candidates ...[]interface{}) string {
	t.Helper()

	candList := make([]interface{}, 0, len(candidates))
	for _, c := range candidates {
		candList = append(candList, c)
	}

	body := []interface{}{nil, metadata, nil, nil, candList}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	envelope := []interface{}{
		[]interface{}{"wrb.fr", nil, string(bodyJSON)},
	}
	line, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return string(line)
}

func candidate(rcid, text string) []interface{} {
	return []interface{}{rcid, []interface{}{text}}
}

func TestParseChunk(t *testing.T) {
	valid := chunkLine(t, []string{"c_123", "r_456"}, candidate("rc_789", "Hello"))

	tests := []struct {
		name     string
		line     string
		wantNil  bool
		wantText string
	}{
		{name: "empty line", line: "", wantNil: true},
		{name: "anti-hijacking guard", line: ")]}'", wantNil: true},
		{name: "length prefix", line: "1234", wantNil: true},
		{name: "envelope without body", line: `[["wrb.fr",null,null]]`, wantNil: true},
		{name: "valid chunk", line: valid, wantText: "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := parseChunk(tt.line, "gemini-2.5-flash")
			if err != nil {
				t.Fatalf("parseChunk() error = %v", err)
			}
			if tt.wantNil {
				if output != nil {
					t.Fatalf("parseChunk() = %+v, want nil", output)
				}
				return
			}
			if output == nil {
				t.Fatal("parseChunk() = nil, want output")
			}
			if output.Text() != tt.wantText {
				t.Errorf("Text() = %q, want %q", output.Text(), tt.wantText)
			}
		})
	}
}

func TestParseChunk_Metadata(t *testing.T) {
	line := chunkLine(t, []string{"c_123", "r_456"}, candidate("rc_789", "Hi"))

	output, err := parseChunk(line, "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("parseChunk() error = %v", err)
	}
	if output == nil {
		t.Fatal("parseChunk() = nil, want output")
	}

	if len(output.Metadata) != 2 || output.Metadata[0] != "c_123" || output.Metadata[1] != "r_456" {
		t.Errorf("Metadata = %v, want [c_123 r_456]", output.Metadata)
	}
	if output.RCID() != "rc_789" {
		t.Errorf("RCID() = %q, want %q", output.RCID(), "rc_789")
	}
}

func TestParseChunk_ErrorCode(t *testing.T) {
	// Short error format: code at 0.5.0
	line := `[["wrb.fr",null,null,null,null,[1037]]]`

	_, err := parseChunk(line, "gemini-2.5-flash")
	if err == nil {
		t.Fatal("parseChunk() error = nil, want usage limit error")
	}

	var usageErr *apierrors.UsageLimitError
	if !errors.As(err, &usageErr) {
		t.Fatalf("error = %T, want *UsageLimitError", err)
	}
	if usageErr.ModelName != "gemini-2.5-flash" {
		t.Errorf("ModelName = %q, want %q", usageErr.ModelName, "gemini-2.5-flash")
	}
}

func TestParseChunk_CardContentFallback(t *testing.T) {
	// When the primary text slot holds a card content URL, the alternative
	// text slot at index 22 carries the actual reply.
	cand := make([]interface{}, 23)
	cand[0] = "rc_1"
	cand[1] = []interface{}{"http://googleusercontent.com/card_content/0"}
	cand[22] = []interface{}{"Actual reply text"}

	line := chunkLine(t, nil, cand)

	output, err := parseChunk(line, "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("parseChunk() error = %v", err)
	}
	if output == nil {
		t.Fatal("parseChunk() = nil, want output")
	}
	if output.Text() != "Actual reply text" {
		t.Errorf("Text() = %q, want alternative text", output.Text())
	}
}

func TestConsumeStream(t *testing.T) {
	// Each chunk carries the cumulative text so far; the consumer forwards
	// only the increments, in order.
	lines := []string{
		")]}'",
		"579",
		chunkLine(t, []string{"c_1", "r_1"}, candidate("rc_1", "Hel")),
		chunkLine(t, []string{"c_1", "r_1"}, candidate("rc_1", "Hello, wor")),
		chunkLine(t, []string{"c_1", "r_1"}, candidate("rc_1", "Hello, world.")),
	}
	body := strings.NewReader(strings.Join(lines, "\n") + "\n")

	var fragments []string
	output, err := consumeStream(context.Background(), body, "gemini-2.5-flash", func(fragment string) {
		fragments = append(fragments, fragment)
	})
	if err != nil {
		t.Fatalf("consumeStream() error = %v", err)
	}

	want := []string{"Hel", "lo, wor", "ld."}
	if len(fragments) != len(want) {
		t.Fatalf("fragments = %v, want %v", fragments, want)
	}
	for i := range want {
		if fragments[i] != want[i] {
			t.Errorf("fragment[%d] = %q, want %q", i, fragments[i], want[i])
		}
	}

	if output.Text() != "Hello, world." {
		t.Errorf("final Text() = %q, want %q", output.Text(), "Hello, world.")
	}
	if strings.Join(fragments, "") != output.Text() {
		t.Error("concatenated fragments do not reproduce the final text")
	}
}

func TestConsumeStream_NoValidChunk(t *testing.T) {
	body := strings.NewReader(")]}'\n42\n")

	_, err := consumeStream(context.Background(), body, "gemini-2.5-flash", nil)
	if err == nil {
		t.Fatal("consumeStream() error = nil, want parse error")
	}

	var parseErr *apierrors.ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("error = %T, want *ParseError", err)
	}
}

func TestConsumeStream_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := strings.NewReader(chunkLine(t, nil, candidate("rc_1", "Hi")) + "\n")

	_, err := consumeStream(ctx, body, "gemini-2.5-flash", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBuildPayload(t *testing.T) {
	payload, err := buildPayload("hello there", []string{"c_1", "r_1", "rc_1"})
	if err != nil {
		t.Fatalf("buildPayload() error = %v", err)
	}

	outer := gjson.Parse(payload)
	inner := gjson.Parse(outer.Get("1").String())

	if got := inner.Get("0.0").String(); got != "hello there" {
		t.Errorf("prompt = %q, want %q", got, "hello there")
	}
	if got := inner.Get("2.0").String(); got != "c_1" {
		t.Errorf("metadata cid = %q, want %q", got, "c_1")
	}
	if got := inner.Get("2.2").String(); got != "rc_1" {
		t.Errorf("metadata rcid = %q, want %q", got, "rc_1")
	}
}

func TestBuildPayload_NoMetadata(t *testing.T) {
	payload, err := buildPayload("first message", nil)
	if err != nil {
		t.Fatalf("buildPayload() error = %v", err)
	}

	outer := gjson.Parse(payload)
	inner := gjson.Parse(outer.Get("1").String())

	if inner.Get("2").Type != gjson.Null {
		t.Errorf("metadata = %v, want null", inner.Get("2"))
	}
}

func TestGenerateContentStream(t *testing.T) {
	streamBody := ")]}'\n" +
		chunkLine(t, []string{"c_1", "r_1"}, candidate("rc_1", "Hi ")) + "\n" +
		chunkLine(t, []string{"c_1", "r_1"}, candidate("rc_1", "Hi there")) + "\n"

	mock := newMockHttpClient([]byte(streamBody), 200)
	client := testClient(mock)

	var fragments []string
	output, err := client.GenerateContentStream(context.Background(), "hello", nil, func(fragment string) {
		fragments = append(fragments, fragment)
	})
	if err != nil {
		t.Fatalf("GenerateContentStream() error = %v", err)
	}

	if output.Text() != "Hi there" {
		t.Errorf("Text() = %q, want %q", output.Text(), "Hi there")
	}
	if len(fragments) != 2 {
		t.Errorf("got %d fragments, want 2", len(fragments))
	}

	req := mock.LastRequest
	if req == nil {
		t.Fatal("no request was sent")
	}
	if req.URL.String() != models.EndpointGenerate {
		t.Errorf("request URL = %q, want %q", req.URL.String(), models.EndpointGenerate)
	}
	if got := req.Header.Get("Content-Type"); !strings.Contains(got, "application/x-www-form-urlencoded") {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestGenerateContentStream_EmptyPrompt(t *testing.T) {
	client := testClient(newMockHttpClient(nil, 200))

	_, err := client.GenerateContentStream(context.Background(), "", nil, nil)
	if err == nil {
		t.Fatal("GenerateContentStream() error = nil, want error for empty prompt")
	}
}

func TestGenerateContentStream_ClosedClient(t *testing.T) {
	client := testClient(newMockHttpClient(nil, 200))
	client.Close()

	_, err := client.GenerateContentStream(context.Background(), "hello", nil, nil)
	if err == nil {
		t.Fatal("GenerateContentStream() error = nil, want error for closed client")
	}
}

func TestGenerateContentStream_HTTPError(t *testing.T) {
	client := testClient(newMockHttpClient([]byte("server error"), 500))

	_, err := client.GenerateContentStream(context.Background(), "hello", nil, nil)
	if err == nil {
		t.Fatal("GenerateContentStream() error = nil, want API error")
	}

	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *APIError", err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestGenerateContentStream_NetworkError(t *testing.T) {
	mock := &MockHttpClient{Err: io.ErrUnexpectedEOF}
	client := testClient(mock)

	_, err := client.GenerateContentStream(context.Background(), "hello", nil, nil)
	if !apierrors.IsNetworkError(err) {
		t.Errorf("error = %v, want network error", err)
	}
}
