package extension

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cashonize/nft-metadata-decoder/decoder"
	"github.com/cashonize/nft-metadata-decoder/decoder/registry"
)

// Pipeline invokes the extensions declared by an identity snapshot
type Pipeline struct {
	registry *Registry
	logger   *slog.Logger
}

// NewPipeline creates a pipeline over reg. A nil reg means the default
// registry, a nil logger slog.Default().
func NewPipeline(reg *Registry, logger *slog.Logger) *Pipeline {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry: reg,
		logger:   logger,
	}
}

// Invoke runs every registered method of every extension the snapshot
// declares, in declaration order, feeding each the output produced by the
// previous one. Extensions set to false in enabled are skipped. Failing
// handlers leave the output unchanged; Invoke itself never fails.
func (p *Pipeline) Invoke(ctx context.Context, output decoder.Output, snapshot *registry.IdentitySnapshot, client ChainClient, networkPrefix string, enabled map[string]bool) decoder.Output {
	if snapshot == nil || snapshot.Extensions == nil {
		return output
	}

	current := output
	for _, ext := range snapshot.Extensions {
		log := p.logger.With("extension", ext.Key)
		if on, ok := enabled[ext.Key]; ok && !on {
			log.Debug("extension disabled")
			continue
		}
		if !p.registry.Has(ext.Key) {
			log.Debug("skipping unregistered extension")
			continue
		}
		if !ext.IsObject {
			log.Warn("extension declaration is not an object")
			continue
		}

		for _, method := range ext.Children {
			handler, ok := p.registry.Lookup(ext.Key, method.Key)
			if !ok {
				log.Warn("skipping unregistered extension method", "method", method.Key)
				continue
			}
			req := Request{
				Output:        current.Clone(),
				Snapshot:      snapshot,
				Config:        method,
				Client:        client,
				NetworkPrefix: networkPrefix,
				Logger:        log.With("method", method.Key),
			}
			next, err := p.call(ctx, handler, req)
			if err != nil {
				log.Warn("extension method failed", "method", method.Key, "error", err)
				continue
			}
			current = next
		}
	}
	return current
}

// call runs one handler with panics turned into errors
func (p *Pipeline) call(ctx context.Context, h Handler, req Request) (out decoder.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, req)
}
