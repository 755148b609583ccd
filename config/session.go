// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"parqcel/assistant"
	"parqcel/fileio"
	"parqcel/model"
	"parqcel/sandbox"
)

// Session holds the state shared by one run of the application. It is
// created by the entry point and passed to whatever needs it.
type Session struct {
	ID        uuid.UUID
	Config    *Config
	Logger    *log.Logger
	Assistant assistant.Backend
	Runner    *sandbox.Runner
}

// NewSession builds a session from cfg. Log output goes to w when debug is
// enabled and is discarded otherwise.
func NewSession(cfg *Config, w io.Writer) (*Session, error) {
	if cfg == nil {
		cfg = Defaults()
	}
	if w == nil {
		w = os.Stderr
	}
	if !cfg.Debug {
		w = io.Discard
	}
	logger := log.New(w, "parqcel: ", log.LstdFlags|log.Lmsgprefix)

	backend, err := assistant.New(assistant.Settings{
		Backend: cfg.AssistantBackend,
		Host:    cfg.OllamaHost,
		Model:   cfg.OllamaModel,
		Timeout: time.Duration(cfg.APITimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:        uuid.New(),
		Config:    cfg,
		Logger:    logger,
		Assistant: backend,
		Runner:    sandbox.NewRunner(logger, time.Duration(cfg.SandboxTimeoutSec)*time.Second),
	}
	logger.Printf("session %s started (page size %d, history limit %d)", s.ID, cfg.PageSize, cfg.HistoryLimit)
	return s, nil
}

// NewModel creates an empty table model configured for this session.
func (s *Session) NewModel() *model.TableModel {
	return model.New(model.Options{
		PageSize:     s.Config.PageSize,
		HistoryLimit: s.Config.HistoryLimit,
		Logger:       s.Logger,
		Runner:       s.Runner,
	})
}

// LoadOptions returns the file reading options for this session.
func (s *Session) LoadOptions() fileio.Options {
	return fileio.Options{
		Delimiter:   s.Config.Delimiter(),
		DetectDates: s.Config.CSVDetectDates,
		Logger:      s.Logger,
	}
}

// TimeoutContext creates a context bounded by the configured API timeout
// (60 seconds if unset), used for Delta Sharing and assistant calls.
func (s *Session) TimeoutContext(parent context.Context) (context.Context, context.CancelFunc) {
	timeoutSeconds := s.Config.APITimeoutSec
	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}
	return context.WithTimeout(parent, time.Duration(timeoutSeconds)*time.Second)
}
