package dashboard

import (
	"os"
	"strings"
)

// envEChartsAssetsHost overrides where chart pages load the ECharts scripts from
// (a CDN or self-hosted bucket). Unset keeps the go-echarts default host.
const envEChartsAssetsHost = "SALES_DASHBOARD_ASSETS_HOST"

// DefaultEChartsAssetsHost returns the assets host from SALES_DASHBOARD_ASSETS_HOST, or "".
func DefaultEChartsAssetsHost() string {
	return ensureTrailingSlash(strings.TrimSpace(os.Getenv(envEChartsAssetsHost)))
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
