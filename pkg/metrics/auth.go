package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics records authentication and account activity.
type AuthMetrics struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	photoUploads  prometheus.Counter
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Account registrations by role.",
	}, []string{"role"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_rejections_total",
		Help: "Bearer token rejections by kind.",
	}, []string{"kind"})
	photoUploads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "profile_photo_uploads_total",
		Help: "Successful profile photo uploads.",
	})
	reg.MustRegister(logins, registrations, rejections, photoUploads)
	return &AuthMetrics{
		logins:        logins,
		registrations: registrations,
		rejections:    rejections,
		photoUploads:  photoUploads,
	}
}

// IncLogin increments the login counter for the given outcome.
func (a *AuthMetrics) IncLogin(outcome string) {
	if a == nil || a.logins == nil {
		return
	}
	a.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRegistration increments the registration counter for the given role.
func (a *AuthMetrics) IncRegistration(role string) {
	if a == nil || a.registrations == nil {
		return
	}
	a.registrations.WithLabelValues(normalizeLabel(role)).Inc()
}

// IncTokenRejection increments the rejection counter for the given kind.
func (a *AuthMetrics) IncTokenRejection(kind string) {
	if a == nil || a.rejections == nil {
		return
	}
	a.rejections.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncPhotoUpload increments the photo upload counter.
func (a *AuthMetrics) IncPhotoUpload() {
	if a == nil || a.photoUploads == nil {
		return
	}
	a.photoUploads.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
