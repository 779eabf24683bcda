package connectors

import (
	"github.com/custodia-labs/inkling/internal/connectors/filesystem"
	"github.com/custodia-labs/inkling/internal/connectors/google/drive"
	"github.com/custodia-labs/inkling/internal/connectors/google/gmail"
	"github.com/custodia-labs/inkling/internal/connectors/slack"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Defaults returns a registry with every built-in provider configured
// from cfg.
func Defaults(cfg domain.Config, saver driven.TokenSaver) *Registry {
	r := NewRegistry(saver)
	r.Register(filesystem.NewProvider())
	r.Register(gmail.NewProvider(cfg.Google, gmail.Config{MaxResults: int64(cfg.Indexing.GmailMaxResults)}))
	r.Register(drive.NewProvider(cfg.Google))
	r.Register(slack.NewProvider(cfg.Slack))
	return r
}
