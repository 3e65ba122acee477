// Package vectorutils constructs vector drivers from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/mendellabsco/mendel/pkg/vector"
	"github.com/mendellabsco/mendel/pkg/vector/chromem"
	"github.com/mendellabsco/mendel/pkg/vector/pgvectorstore"
	"github.com/mendellabsco/mendel/pkg/vector/qdrantstore"
	"github.com/mendellabsco/mendel/pkg/vector/sqlitevec"
)

// NewVectorDriverOpts configures driver construction. Target is interpreted
// per provider: a database file path for sqlite, a persistence directory for
// chromem, host:port for qdrant, and a DSN for pgvector.
type NewVectorDriverOpts struct {
	ProviderType string
	Target       string
	Collection   string
	Dimensions   uint
	APIKey       string
	Logger       *slog.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "sqlite":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chromem":
		return chromem.NewDriver(chromem.Config{
			Path:       o.Target,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		host, port, err := splitHostPort(o.Target)
		if err != nil {
			return nil, fmt.Errorf("parsing qdrant target %q: %w", o.Target, err)
		}
		return qdrantstore.NewDriver(ctx, qdrantstore.Config{
			Host:       host,
			Port:       port,
			APIKey:     o.APIKey,
			Collection: o.Collection,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "pgvector":
		return pgvectorstore.NewDriver(ctx, pgvectorstore.Config{
			DSN:        o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

// splitHostPort parses host:port, defaulting to the qdrant gRPC port when
// the port is omitted.
func splitHostPort(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, 6334, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
