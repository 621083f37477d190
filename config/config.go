package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// DeliveryConfig holds the constants of the radius based fee/time estimate.
type DeliveryConfig struct {
	BaseRate    float64 `mapstructure:"baseRate"`
	RatePerKm   float64 `mapstructure:"ratePerKm"`
	BaseMinTime int     `mapstructure:"baseMinTime"`
	BaseMaxTime int     `mapstructure:"baseMaxTime"`
	TimePerKm   float64 `mapstructure:"timePerKm"`
}

type OrdersConfig struct {
	PollInterval   time.Duration `mapstructure:"pollInterval"`
	NewOrderWindow time.Duration `mapstructure:"newOrderWindow"`
	AlertBuffer    int           `mapstructure:"alertBuffer"`
}

type NotifyConfig struct {
	CountryCode    string `mapstructure:"countryCode"`
	CurrencySymbol string `mapstructure:"currencySymbol"`
}

type ReceiptConfig struct {
	DefaultWidthMm int `mapstructure:"defaultWidthMm"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Delivery DeliveryConfig `mapstructure:"delivery"`
	Orders   OrdersConfig   `mapstructure:"orders"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Receipt  ReceiptConfig  `mapstructure:"receipt"`
}

var vp *viper.Viper

func LoadConfig() (Config, error) {
	vp = viper.New()

	var config Config

	vp.SetConfigName("config")
	vp.SetConfigType("json")
	vp.AddConfigPath("config")

	setDefaults(vp)

	err := vp.ReadInConfig()
	if err != nil {
		return Config{}, err
	}

	err = vp.Unmarshal(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}

func setDefaults(vp *viper.Viper) {
	vp.SetDefault("server.port", ":8080")

	vp.SetDefault("delivery.baseRate", 3.0)
	vp.SetDefault("delivery.ratePerKm", 1.0)
	vp.SetDefault("delivery.baseMinTime", 10)
	vp.SetDefault("delivery.baseMaxTime", 20)
	vp.SetDefault("delivery.timePerKm", 2.0)

	vp.SetDefault("orders.pollInterval", "5s")
	vp.SetDefault("orders.newOrderWindow", "60s")
	vp.SetDefault("orders.alertBuffer", 100)

	vp.SetDefault("notify.countryCode", "55")
	vp.SetDefault("notify.currencySymbol", "R$")

	vp.SetDefault("receipt.defaultWidthMm", 80)
}
