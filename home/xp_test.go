package home

import (
	"testing"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
)

func TestAnnounceTargets(t *testing.T) {
	source := snowflake.ID(100)
	configured := snowflake.ID(200)

	assert.Equal(t, []snowflake.ID{source}, announceTargets(0, source),
		"no configured channel means the source channel only")
	assert.Equal(t, []snowflake.ID{source}, announceTargets(source, source),
		"configured channel equal to source is not tried twice")
	assert.Equal(t, []snowflake.ID{configured, source}, announceTargets(configured, source),
		"configured channel first, source channel as fallback")
}
