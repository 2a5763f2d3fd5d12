package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

// GenerateOptions contains options for content generation
type GenerateOptions struct {
	Model    models.Model
	Metadata []string // [cid, rid, rcid] for chat context
}

// FragmentFunc receives one text increment. Increments arrive strictly in
// wire order; concatenating them reproduces the full reply.
type FragmentFunc func(fragment string)

// GenerateContentStream sends a prompt and consumes the streamed reply.
// Each wire chunk carries the cumulative text so far; the increment relative
// to the previous chunk is forwarded to onFragment (which may be nil). The
// returned ModelOutput is the final chunk, carrying the complete reply and
// the conversation metadata. Cancelling ctx aborts the stream.
func (c *Client) GenerateContentStream(ctx context.Context, prompt string, opts *GenerateOptions, onFragment FragmentFunc) (*models.ModelOutput, error) {
	if prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	model := c.GetModel()
	var metadata []string
	if opts != nil {
		if opts.Model.Name != "" {
			model = opts.Model
		}
		metadata = opts.Metadata
	}

	payload, err := buildPayload(prompt, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	form := url.Values{}
	form.Set("at", c.GetAccessToken())
	form.Set("f.req", payload)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		models.EndpointGenerate,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	for key, value := range model.Header {
		req.Header.Set(key, value)
	}
	addAuthCookies(req, c.GetCookies())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apierrors.NewNetworkError("generate content", models.EndpointGenerate, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, apierrors.NewAPIError(resp.StatusCode, models.EndpointGenerate, "generate content failed", string(body))
	}

	return consumeStream(ctx, resp.Body, model.Name, onFragment)
}

// consumeStream reads the chunked response line by line, forwarding text
// increments as they arrive and returning the final parsed output.
func consumeStream(ctx context.Context, body io.Reader, modelName string, onFragment FragmentFunc) (*models.ModelOutput, error) {
	reader := bufio.NewReader(body)

	var last *models.ModelOutput
	var seen string // cumulative text already forwarded

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line, err := reader.ReadString('\n')
		if line != "" {
			output, perr := parseChunk(line, modelName)
			if perr != nil {
				return nil, perr
			}
			if output != nil {
				last = output
				if text := output.Text(); len(text) > len(seen) {
					if onFragment != nil {
						onFragment(text[len(seen):])
					}
					seen = text
				}
			}
		}

		if err != nil {
			if err == io.EOF {
				break
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apierrors.NewNetworkError("read stream", models.EndpointGenerate, err)
		}
	}

	if last == nil {
		return nil, apierrors.NewParseError("no valid chunk found in stream", PathBody)
	}

	log.Debug().Str("component", "api").Int("reply_len", len(seen)).Msg("stream complete")
	return last, nil
}

// parseChunk parses one streamed line. Lines that are not JSON (length
// prefixes, the )]}' guard) and envelopes without a reply body yield
// (nil, nil) and are skipped; embedded error codes yield a typed error.
func parseChunk(line, modelName string) (*models.ModelOutput, error) {
	line = strings.TrimSpace(line)
	if line == "" || !gjson.Valid(line) {
		return nil, nil
	}

	parsed := gjson.Parse(line)

	// Short error format: error code at 0.5.0
	altCode := parsed.Get(PathAltErrorCode)
	if altCode.Exists() && !altCode.IsArray() && altCode.Int() > 0 {
		return nil, apierrors.HandleErrorCode(models.ErrorCode(altCode.Int()), models.EndpointGenerate, modelName)
	}

	// Find the envelope entry whose body parses to a candidate list
	var responseBody gjson.Result
	parsed.ForEach(func(_, value gjson.Result) bool {
		bodyData := value.Get(PathBody)
		if !bodyData.Exists() {
			return true
		}
		bodyJSON := gjson.Parse(bodyData.String())
		if bodyJSON.Get(PathCandList).Exists() {
			responseBody = bodyJSON
			return false
		}
		return true
	})

	if !responseBody.Exists() {
		// Standard error path
		if errorCode := parsed.Get(PathErrorCode); errorCode.Exists() {
			return nil, apierrors.HandleErrorCode(models.ErrorCode(errorCode.Int()), models.EndpointGenerate, modelName)
		}
		return nil, nil
	}

	var metadata []string
	if metadataResult := responseBody.Get(PathMetadata); metadataResult.IsArray() {
		metadataResult.ForEach(func(_, v gjson.Result) bool {
			metadata = append(metadata, v.String())
			return true
		})
	}

	candidateList := responseBody.Get(PathCandList)
	if !candidateList.IsArray() {
		return nil, nil
	}

	var candidates []models.Candidate
	candidateList.ForEach(func(_, candValue gjson.Result) bool {
		rcid := candValue.Get(PathCandRCID).String()
		if rcid == "" {
			return true
		}

		text := candValue.Get(PathCandText).String()
		if strings.HasPrefix(text, "http://googleusercontent.com/card_content/") {
			if alt := candValue.Get(PathCandTextAlt).String(); alt != "" {
				text = alt
			}
		}

		candidates = append(candidates, models.Candidate{
			RCID:     rcid,
			Text:     text,
			Thoughts: candValue.Get(PathCandThoughts).String(),
		})
		return true
	})

	if len(candidates) == 0 {
		return nil, nil
	}

	return &models.ModelOutput{
		Metadata:   metadata,
		Candidates: candidates,
		Chosen:     0,
	}, nil
}

// buildPayload creates the f.req payload for the generate request
func buildPayload(prompt string, metadata []string) (string, error) {
	inner := []interface{}{
		[]interface{}{prompt},
		nil,
		metadata,
	}

	innerJSON, err := json.Marshal(inner)
	if err != nil {
		return "", err
	}

	outer := []interface{}{
		nil,
		string(innerJSON),
	}

	outerJSON, err := json.Marshal(outer)
	if err != nil {
		return "", err
	}

	return string(outerJSON), nil
}
