package waitlist

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// IDGenerator hands out record ids. Ids must be unique and increasing.
type IDGenerator interface {
	NextID() int64
}

type snowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator issues millisecond-prefixed ids with a per-node sequence,
// so any number of creations inside one millisecond still get distinct ids.
// Snowflake ids are always larger than plain millisecond timestamps, which keeps
// them ordered after ids written by older clients.
func NewSnowflakeGenerator(node int64) (IDGenerator, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("waitlist: snowflake node %d: %w", node, err)
	}
	return &snowflakeGenerator{node: n}, nil
}

func (g *snowflakeGenerator) NextID() int64 {
	return g.node.Generate().Int64()
}
