package weather

// AQILevel is the US EPA category of an air quality index value.
type AQILevel string

const (
	AQIUnknown                     AQILevel = "Unknown"
	AQIGood                        AQILevel = "Good"
	AQIModerate                    AQILevel = "Moderate"
	AQIUnhealthyForSensitiveGroups AQILevel = "Unhealthy for Sensitive Groups"
	AQIUnhealthy                   AQILevel = "Unhealthy"
	AQIVeryUnhealthy               AQILevel = "Very Unhealthy"
	AQIHazardous                   AQILevel = "Hazardous"
)

// ClassifyAQI buckets an AQI value. A nil value is Unknown.
func ClassifyAQI(aqi *int) AQILevel {
	if aqi == nil {
		return AQIUnknown
	}
	switch v := *aqi; {
	case v <= 50:
		return AQIGood
	case v <= 100:
		return AQIModerate
	case v <= 150:
		return AQIUnhealthyForSensitiveGroups
	case v <= 200:
		return AQIUnhealthy
	case v <= 300:
		return AQIVeryUnhealthy
	default:
		return AQIHazardous
	}
}

// AQITip returns travel advice for the current air quality.
func AQITip(aqi *int) string {
	if aqi == nil {
		return "No air quality data available."
	}
	switch v := *aqi; {
	case v <= 50:
		return "Air quality is good. It's a great day for outdoor activities and walking instead of driving."
	case v <= 100:
		return "Air quality is acceptable. Consider carpooling or using public transport to help reduce emissions."
	case v <= 150:
		return "Air quality is unhealthy for sensitive groups. Consider limiting outdoor activities and using public transport."
	default:
		return "Air quality is unhealthy. Limit outdoor activities and consider working from home if possible."
	}
}
