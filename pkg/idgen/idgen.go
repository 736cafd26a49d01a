package idgen

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

func get() *snowflake.Node {
	once.Do(func() {
		num := int64(1)
		if v := os.Getenv("NODE_ID"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				num = parsed
			}
		}
		var err error
		node, err = snowflake.NewNode(num)
		if err != nil {
			log.Fatalf("Failed to init Snowflake: %v", err)
		}
	})
	return node
}

// GenerateID returns a raw snowflake ID.
func GenerateID() int64 {
	return get().Generate().Int64()
}

// Code builds a human-readable reference code, e.g. SO-20250829-1834922341.
// Snowflake IDs are monotonic per node, so codes never collide.
func Code(prefix string) string {
	return fmt.Sprintf("%s-%s-%d", prefix, time.Now().Format("20060102"), GenerateID())
}
