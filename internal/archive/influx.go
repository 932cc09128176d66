package archive

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"plant_watering/internal/config"
	"plant_watering/internal/models"
)

const measurement = "sensor_reading"

// Influx mirrors sensor readings into an InfluxDB bucket.
type Influx struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
}

func NewInflux(cfg config.InfluxConfig) *Influx {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Influx{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

// WriteReading writes one point tagged with the device id and MAC.
// Absent optional values are left out of the point.
func (a *Influx) WriteReading(ctx context.Context, mac string, r models.SensorReading) error {
	if err := a.writer.WritePoint(ctx, readingPoint(mac, r)); err != nil {
		return fmt.Errorf("write reading %s to influx: %w", r.ID, err)
	}
	return nil
}

func (a *Influx) Close() {
	a.client.Close()
}

func readingPoint(mac string, r models.SensorReading) *write.Point {
	fields := map[string]interface{}{
		"soil_humidity": r.SoilHumidity,
	}
	optional := map[string]*float64{
		"water_level":     r.WaterLevel,
		"air_temperature": r.AirTemperature,
		"air_humidity":    r.AirHumidity,
		"battery_level":   r.BatteryLevel,
		"rssi":            r.RSSI,
	}
	for k, v := range optional {
		if v != nil {
			fields[k] = *v
		}
	}

	return influxdb2.NewPoint(
		measurement,
		map[string]string{"device_id": r.DeviceID, "mac": mac},
		fields,
		r.RecordedAt,
	)
}

// Nop is used when the archive is disabled.
type Nop struct{}

func (Nop) WriteReading(context.Context, string, models.SensorReading) error { return nil }
