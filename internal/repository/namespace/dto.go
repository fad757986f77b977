package namespace

import (
	"fmt"
	"strconv"

	domns "github.com/kailas-cloud/hybridex/internal/domain/namespace"
)

// infoToHash converts a registry entry to a map for HSET.
func infoToHash(info domns.Info) map[string]string {
	return map[string]string{
		"name":       info.Name(),
		"created_at": strconv.FormatInt(info.CreatedAt(), 10),
	}
}

// infoFromHash hydrates a registry entry from an HGETALL result map.
func infoFromHash(m map[string]string) (domns.Info, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domns.Info{}, fmt.Errorf("invalid created_at: %w", err)
	}
	return domns.NewInfo(m["name"], createdAt), nil
}
