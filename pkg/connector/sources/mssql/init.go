package mssql

import (
	"github.com/ecochain/ecochain/pkg/connector/core"
	"github.com/ecochain/ecochain/pkg/connector/registry"
	"github.com/ecochain/ecochain/pkg/models"
)

func init() {
	registry.MustRegister(models.SourceTypeMSSQL, func() core.Connector { return New() })
}
