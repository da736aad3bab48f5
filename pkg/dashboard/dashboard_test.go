package dashboard

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/goliatone/go-sales-dashboard/components/dashboard"
	"github.com/goliatone/go-sales-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-sales-dashboard/pkg/sales"
)

const ventasCSV = `Fecha del pedido,País/Región,Nombre del cliente,Categoría,Subcategoría,Segmento,Método de envío,Ventas,Ganancia
2024-03-01,Chile,Eva,Muebles,Mesas,Consumidor,Estándar,"1,200.50",80
2024-03-02,Chile,Rosa,Tecnología,Teléfonos,Corporativo,Estándar,300,-20
`

func TestNewWiresServiceAndCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventas.csv")
	require.NoError(t, os.WriteFile(path, []byte(ventasCSV), 0o600))

	cfg, err := core.VariantConfig(core.VariantRetail)
	require.NoError(t, err)
	cfg.Dataset.Path = path

	logs := &bytes.Buffer{}
	dash, err := New(cfg, BuildOptions{
		Logger:    slog.New(slog.NewJSONHandler(logs, nil)),
		Templates: true,
	})
	require.NoError(t, err)

	require.NoError(t, dash.Commands.Warm(context.Background(), commands.WarmSessionInput{}))
	assert.Contains(t, logs.String(), "dashboard.session.warm")

	snap, err := dash.Controller.Snapshot(context.Background(), "", sales.Selection{})
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Rows)
	assert.Equal(t, "1500.5", snap.Metrics.TotalSales.String())

	var page bytes.Buffer
	require.NoError(t, dash.Controller.RenderHTML(context.Background(), "", sales.Selection{}, &page))
	assert.Contains(t, page.String(), cfg.Title)
}

func TestNewRejectsBadDatasetConfig(t *testing.T) {
	cfg, err := core.VariantConfig(core.VariantRetail)
	require.NoError(t, err)
	cfg.Dataset.URL, cfg.Dataset.Path = "", ""

	_, err = New(cfg, BuildOptions{})
	assert.Error(t, err)
}
