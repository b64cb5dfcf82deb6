package weather

import (
	"net/http"
	"strconv"
	"strings"

	"weather_gateway/internal/apperr"

	"github.com/gin-gonic/gin"
)

type WeatherController struct {
	weatherService WeatherServiceInterface
}

func NewWeatherController(weatherService WeatherServiceInterface) *WeatherController {
	return &WeatherController{
		weatherService: weatherService,
	}
}

// GetCurrent handles GET /api/weather?city=
func (wc *WeatherController) GetCurrent(c *gin.Context) {
	report, err := wc.weatherService.Current(c.Request.Context(), c.Query("city"))
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", report)
}

// GetAirQuality handles GET /api/air-quality?lat=&lon=
func (wc *WeatherController) GetAirQuality(c *gin.Context) {
	latParam := strings.TrimSpace(c.Query("lat"))
	lonParam := strings.TrimSpace(c.Query("lon"))
	if latParam == "" || lonParam == "" {
		apperr.Write(c, ErrMissingCoordinates)
		return
	}

	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil {
		apperr.Write(c, ErrInvalidCoordinates.WithCause(err))
		return
	}
	lon, err := strconv.ParseFloat(lonParam, 64)
	if err != nil {
		apperr.Write(c, ErrInvalidCoordinates.WithCause(err))
		return
	}

	report, err := wc.weatherService.AirQuality(c.Request.Context(), lat, lon)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", report)
}

// CreateLog handles POST /api/weather
func (wc *WeatherController) CreateLog(c *gin.Context) {
	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, ErrMissingLogFields.WithCause(err))
		return
	}

	log, err := wc.weatherService.CreateLog(c.Request.Context(), req.City, *req.Temperature)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Weather log added successfully",
		"weatherLog": log,
	})
}

// ListLogs handles GET /api/weather/logs
func (wc *WeatherController) ListLogs(c *gin.Context) {
	logs, err := wc.weatherService.ListLogs(c.Request.Context())
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

// LogsByCity handles GET /api/weather/:city
func (wc *WeatherController) LogsByCity(c *gin.Context) {
	logs, err := wc.weatherService.LogsByCity(c.Request.Context(), c.Param("city"))
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

// UpdateLog handles PUT /api/weather/:id
func (wc *WeatherController) UpdateLog(c *gin.Context) {
	id, err := parseLogID(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req UpdateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, ErrMissingTemperature.WithCause(err))
		return
	}

	log, err := wc.weatherService.UpdateTemperature(c.Request.Context(), id, *req.Temperature)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Weather log updated",
		"updatedWeatherLog": log,
	})
}

// DeleteLog handles DELETE /api/weather/:id
func (wc *WeatherController) DeleteLog(c *gin.Context) {
	id, err := parseLogID(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	if err := wc.weatherService.DeleteLog(c.Request.Context(), id); err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Weather log deleted successfully",
	})
}

func parseLogID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidLogID
	}
	return id, nil
}
