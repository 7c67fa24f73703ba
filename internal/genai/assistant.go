package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clearchart/intake/internal/shared/config"
	"github.com/clearchart/intake/internal/shared/errors"
	"github.com/clearchart/intake/internal/shared/metrics"
)

// JobStatus tracks one generation job through its lifecycle.
type JobStatus string

const (
	JobCreated   JobStatus = "created"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobTimedOut  JobStatus = "timed_out"
)

// job is the transient state of one assistant invocation. It lives for one
// Generate call and is never persisted.
type job struct {
	threadID  string
	runID     string
	status    JobStatus
	startedAt time.Time
	deadline  time.Time
}

// AssistantClient is the asynchronous generation backend: it creates a
// thread-scoped run against a pre-configured assistant and polls the run
// until completion or the deadline.
type AssistantClient struct {
	baseURL      string
	apiKey       string
	assistantID  string
	pollInterval time.Duration
	deadline     time.Duration
	http         doer
	log          *logrus.Logger

	// now and sleep are injectable so the poll loop is testable without
	// wall-clock waiting.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewAssistant creates the asynchronous backend client.
func NewAssistant(cfg config.GenerationConfig, apiKey, assistantID string, log *logrus.Logger) *AssistantClient {
	return &AssistantClient{
		baseURL:      cfg.AssistantBaseURL,
		apiKey:       apiKey,
		assistantID:  assistantID,
		pollInterval: cfg.PollInterval,
		deadline:     cfg.Deadline,
		http:         newBreakerDoer("assistant", newHTTPClient()),
		log:          log,
		now:          time.Now,
		sleep:        sleepContext,
	}
}

type runResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type threadResponse struct {
	ID string `json:"id"`
}

type messageList struct {
	Data []struct {
		ID        string `json:"id"`
		Role      string `json:"role"`
		CreatedAt int64  `json:"created_at"`
		Content   []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// Generate runs the prompt through the assistant and returns its reply.
func (c *AssistantClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.Unconfigured("openai api key")
	}
	if c.assistantID == "" {
		return "", errors.Unconfigured("openai assistant id")
	}

	var thread threadResponse
	if err := c.call(ctx, http.MethodPost, "/v1/threads", map[string]any{}, &thread); err != nil {
		return "", err
	}

	msg := map[string]any{"role": "user", "content": prompt}
	if err := c.call(ctx, http.MethodPost, "/v1/threads/"+thread.ID+"/messages", msg, nil); err != nil {
		return "", err
	}

	var run runResponse
	start := map[string]any{"assistant_id": c.assistantID}
	if err := c.call(ctx, http.MethodPost, "/v1/threads/"+thread.ID+"/runs", start, &run); err != nil {
		return "", err
	}

	j := &job{
		threadID:  thread.ID,
		runID:     run.ID,
		status:    JobCreated,
		startedAt: c.now(),
	}
	j.deadline = j.startedAt.Add(c.deadline)

	if err := c.await(ctx, j, run.Status); err != nil {
		return "", err
	}

	return c.assistantReply(ctx, j)
}

// await polls the run at the fixed interval until it completes, fails, or
// the job deadline elapses.
func (c *AssistantClient) await(ctx context.Context, j *job, status string) error {
	for {
		switch decide(status, c.now(), j.deadline) {
		case pollDone:
			j.status = JobCompleted
			return nil
		case pollFailed:
			j.status = JobFailed
			return errors.Upstream(fmt.Errorf("assistant run ended with status %q", status))
		case pollExpired:
			j.status = JobTimedOut
			c.log.WithFields(logrus.Fields{
				"thread": j.threadID,
				"run":    j.runID,
			}).Error("assistant run timed out")
			return errors.Timeout("assistant run timed out")
		}

		j.status = JobRunning
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return errors.Upstream(err)
		}

		var run runResponse
		if err := c.call(ctx, http.MethodGet, "/v1/threads/"+j.threadID+"/runs/"+j.runID, nil, &run); err != nil {
			return err
		}
		metrics.RunPolled()
		status = run.Status
	}
}

// assistantReply fetches the thread messages and returns the text of the
// most recent assistant-authored one.
func (c *AssistantClient) assistantReply(ctx context.Context, j *job) (string, error) {
	var msgs messageList
	if err := c.call(ctx, http.MethodGet, "/v1/threads/"+j.threadID+"/messages", nil, &msgs); err != nil {
		return "", err
	}

	var latest int64 = -1
	text := ""
	found := false
	for _, m := range msgs.Data {
		if m.Role != "assistant" || m.CreatedAt <= latest {
			continue
		}
		for _, part := range m.Content {
			if part.Type == "text" {
				latest = m.CreatedAt
				text = part.Text.Value
				found = true
				break
			}
		}
	}
	if !found {
		return "", errors.NoResponse("run completed without an assistant message")
	}
	return text, nil
}

// call issues one JSON request against the assistants API and decodes the
// response into out when non-nil.
func (c *AssistantClient) call(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return errors.Internal(err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Error("assistant call failed")
		return errors.Upstream(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errors.Upstream(fmt.Errorf("assistant api returned %d: %s", resp.StatusCode, msg))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Upstream(fmt.Errorf("decoding assistant response: %w", err))
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
