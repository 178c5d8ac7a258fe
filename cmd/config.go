package cmd

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaHost          string
	KafkaConsumerGroup string
	KafkaPositionTopic string
	KafkaWorkers       int

	GeoServiceURL            string
	GeoRequestTimeoutSeconds int
	GeoCircuityFactor        float64

	DefaultPrepSeconds        int
	FoodDelaySeconds          int
	TrafficPenaltySeconds     int
	TrafficDecayWindowSeconds int
	NearbyFloorSeconds        int
	CourierSpeedMPS           float64
	TimeOfDayFactor           float64

	PositionCacheTTLSeconds int
}
