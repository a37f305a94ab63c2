package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	srcconfig "github.com/ecochain/ecochain/pkg/connector/config"
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

type stubConnector struct{ typ models.SourceType }

func (s *stubConnector) Type() models.SourceType { return s.typ }
func (s *stubConnector) TestConnection(context.Context, *srcconfig.SourceConfig) error {
	return nil
}
func (s *stubConnector) Fetch(context.Context, *srcconfig.SourceConfig) ([]core.RawRecord, error) {
	return nil, nil
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(models.SourceTypeAPI, func() core.Connector {
		return &stubConnector{typ: models.SourceTypeAPI}
	}))

	conn, err := r.Get(models.SourceTypeAPI)
	require.NoError(t, err)
	assert.Equal(t, models.SourceTypeAPI, conn.Type())
	assert.True(t, r.Has(models.SourceTypeAPI))
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	factory := func() core.Connector { return &stubConnector{typ: models.SourceTypeMySQL} }

	require.NoError(t, r.Register(models.SourceTypeMySQL, factory))
	err := r.Register(models.SourceTypeMySQL, factory)
	require.Error(t, err)
	assert.True(t, ecoerrors.IsType(err, ecoerrors.ErrorTypeConfig))
}

func TestGetUnknownType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(models.SourceType("ftp"))
	require.Error(t, err)
	assert.True(t, ecoerrors.IsType(err, ecoerrors.ErrorTypeConfig))
	assert.False(t, r.Has(models.SourceType("ftp")))
}

func TestTypesSorted(t *testing.T) {
	r := NewRegistry()
	for _, typ := range []models.SourceType{models.SourceTypeSnowflake, models.SourceTypeAPI, models.SourceTypeMongoDB} {
		typ := typ
		require.NoError(t, r.Register(typ, func() core.Connector { return &stubConnector{typ: typ} }))
	}

	assert.Equal(t, []models.SourceType{models.SourceTypeAPI, models.SourceTypeMongoDB, models.SourceTypeSnowflake}, r.Types())
}
