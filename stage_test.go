package plotexp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestStage(t *testing.T) {
	log, hook := test.NewNullLogger()

	assert.NoError(t, Stage(log, "load", func() error { return nil }))
	var entry = hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "load", entry.Data["stage"])
	assert.Contains(t, entry.Data, "took")

	var boom = errors.New("boom")
	assert.Equal(t, boom, Stage(log, "render", func() error { return boom }))
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func namedStage() error { return nil }

func TestStageDefaultName(t *testing.T) {
	log, hook := test.NewNullLogger()
	assert.NoError(t, Stage(log, "", namedStage))
	assert.Contains(t, hook.LastEntry().Data["stage"], "namedStage")
}
