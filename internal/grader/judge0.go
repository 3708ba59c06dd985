// Package grader 对接 Judge0 代码评测服务
package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"coder_quest_backend/internal/config"
	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"
	"coder_quest_backend/pkg/logger"

	"go.uber.org/zap"
)

// Judge0 status id
const (
	statusAccepted    = 3
	statusWrongAnswer = 4
)

type submissionRequest struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	Stdin          string  `json:"stdin"`
	ExpectedOutput string  `json:"expected_output"`
	CPUTimeLimit   float64 `json:"cpu_time_limit,omitempty"`
}

type submissionResponse struct {
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Judge0Grader 每个测试用例提交一次（wait=true 同步等待结果），统计 Accepted 数量
type Judge0Grader struct {
	BaseURL           string
	APIKey            string
	Host              string
	DefaultLanguageID int
	Client            *http.Client
}

func NewJudge0Grader(cfg config.Judge0Config) *Judge0Grader {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Judge0Grader{
		BaseURL:           strings.TrimRight(cfg.URL, "/"),
		APIKey:            cfg.APIKey,
		Host:              cfg.Host,
		DefaultLanguageID: cfg.DefaultLanguageID,
		Client:            &http.Client{Timeout: timeout},
	}
}

func (g *Judge0Grader) Grade(ctx context.Context, code string, languageID int, challenge model.Challenge) (gamification.GradeResult, error) {
	if g.BaseURL == "" {
		return gamification.GradeResult{}, util.ErrGraderUnavailable
	}
	if languageID <= 0 {
		languageID = g.DefaultLanguageID
	}

	result := gamification.GradeResult{TotalTests: len(challenge.TestCases)}
	for i, tc := range challenge.TestCases {
		resp, err := g.submit(ctx, submissionRequest{
			SourceCode:     code,
			LanguageID:     languageID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			CPUTimeLimit:   float64(challenge.TimeLimitSec),
		})
		if err != nil {
			return gamification.GradeResult{}, err
		}
		switch resp.Status.ID {
		case statusAccepted:
			result.PassedTests++
		case statusWrongAnswer:
		default:
			// 编译错误、超时、运行时错误均视为未通过
			logger.Log.Debug("judge0 test case not accepted",
				zap.Int("case", i),
				zap.Int("status", resp.Status.ID),
				zap.String("description", resp.Status.Description),
			)
		}
	}
	return result, nil
}

func (g *Judge0Grader) submit(ctx context.Context, body submissionRequest) (*submissionResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.BaseURL+"/submissions?base64_encoded=false&wait=true", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.APIKey != "" {
		req.Header.Set("X-RapidAPI-Key", g.APIKey)
	}
	if g.Host != "" {
		req.Header.Set("X-RapidAPI-Host", g.Host)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGraderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrGraderFailed, resp.StatusCode, string(raw))
	}

	var out submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", util.ErrGraderFailed, err)
	}
	return &out, nil
}
