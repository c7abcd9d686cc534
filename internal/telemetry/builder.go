package telemetry

import (
	"math"
	"strings"
	"time"

	"backend-navtelemetry/internal/nav"
	"backend-navtelemetry/internal/shared/geo"
)

// Builder assembles event snapshots. The SDK identity and fallback profile
// are fixed once at process start; everything else comes in per call.
type Builder struct {
	sdkIdentifier  string
	sdkVersion     string
	defaultProfile string
}

func NewBuilder(sdkIdentifier, sdkVersion, defaultProfile string) *Builder {
	return &Builder{
		sdkIdentifier:  sdkIdentifier,
		sdkVersion:     sdkVersion,
		defaultProfile: defaultProfile,
	}
}

// Build derives a snapshot from the session accumulator, the progress view
// and one atomic batch of device reads. It never fails: every missing input
// maps to an absent field, a zero, or a sentinel.
func (b *Builder) Build(session nav.SessionState, progress nav.ProgressState, device DeviceStateProvider, now time.Time) EventSnapshot {
	// one read per sensor per snapshot
	volume := device.VolumeLevel()
	brightness := device.ScreenBrightness()
	plugged := device.BatteryPluggedIn()
	battery := device.BatteryLevel()
	appState := device.ApplicationState()
	orientation := device.Orientation()
	outputs := device.AudioOutputs()
	source := device.LocationSource()

	snap := EventSnapshot{
		SessionIdentifier: session.Identifier,

		Original: routeFacts(session.Original),
		Current:  routeFacts(session.Current),

		DistanceCompleted: roundWhole(session.CompletedDistanceM + progress.DistanceTraveledM),
		DistanceRemaining: roundWhole(progress.DistanceRemainingM),
		DurationRemaining: roundWhole(progress.DurationRemainingS),
		StepIndex:         progress.StepIndex,
		StepCount:         progress.LegStepCount,
		LegIndex:          progress.LegIndex,
		LegCount:          progress.LegCount,
		TotalStepCount:    progress.TotalStepCount(),

		RerouteCount:   session.Reroutes,
		Simulation:     source.Simulated(),
		Profile:        b.profile(session.Current),
		SDKIdentifier:  b.sdkIdentifier,
		SDKVersion:     b.sdkVersion,
		Created:        now,
		StartTimestamp: session.DepartedAt,

		VolumeLevel:      volume,
		AudioType:        ClassifyAudioOutputs(outputs),
		ScreenBrightness: brightness,
		BatteryPluggedIn: plugged,
		BatteryLevel:     battery,
		ApplicationState: appState,
		LocationEngine:   source.EngineName(),
		LocationAccuracy: source.AccuracyM,

		PercentTimeInPortrait:   orientationPercent(session, orientation, now),
		PercentTimeInForeground: activationPercent(session, appState, now),
	}

	if session.Original != nil {
		snap.OriginalRequestIdentifier = session.Original.RequestIdentifier
	}
	if session.Current != nil {
		snap.RequestIdentifier = session.Current.RequestIdentifier
	}

	if progress.CurrentPosition != nil {
		pos := *progress.CurrentPosition
		snap.Position = &pos
		if dest, ok := session.Current.Destination(); ok {
			d := geo.HaversineM(pos.Lat, pos.Lng, dest.Lat, dest.Lng)
			snap.DistanceToDestination = &d
		}
	}

	return snap
}

// BuildStepSnapshot captures the current and upcoming maneuver with the
// step-level truncation policy.
func BuildStepSnapshot(progress nav.ProgressState) StepSnapshot {
	step := StepSnapshot{
		Distance:          truncWhole(progress.StepDistanceM),
		Duration:          truncWhole(progress.StepDurationS),
		DistanceRemaining: truncWhole(progress.StepDistanceRemainingM),
		DurationRemaining: truncWhole(progress.StepDurationRemainingS),
	}
	if m := progress.CurrentManeuver; m != nil {
		step.PreviousInstruction = m.Instruction
		step.PreviousType = m.Type
		step.PreviousModifier = m.Modifier
		step.PreviousName = strings.Join(m.Names, ";")
	}
	if m := progress.UpcomingManeuver; m != nil {
		step.UpcomingInstruction = m.Instruction
		step.UpcomingType = m.Type
		step.UpcomingModifier = m.Modifier
		step.UpcomingName = strings.Join(m.Names, ";")
	}
	return step
}

func (b *Builder) profile(route *nav.Route) string {
	if route != nil && route.Profile != "" {
		return route.Profile
	}
	return b.defaultProfile
}

func routeFacts(route *nav.Route) *RouteFacts {
	if !route.HasCoordinates() {
		return nil
	}
	return &RouteFacts{
		Geometry:          route.Geometry(),
		Distance:          roundWhole(route.DistanceM),
		EstimatedDuration: roundWhole(route.ExpectedTravelTimeS),
		StepCount:         route.StepCount(),
	}
}

// orientationPercent computes percent-of-time-in-portrait. The interval
// since the last orientation change is not yet committed to the accumulator
// and is added to whichever bucket matches the current orientation.
func orientationPercent(session nav.SessionState, current Orientation, now time.Time) int {
	portrait := session.Portrait.Accumulated()
	landscape := session.Landscape.Accumulated()
	switch current {
	case OrientationPortrait:
		portrait += sinceBucket(session.Portrait, now)
	case OrientationLandscape:
		landscape += sinceBucket(session.Landscape, now)
	}
	return percent(portrait, portrait+landscape)
}

// activationPercent computes percent-of-time-in-foreground from the
// foreground/background buckets. An inactive app extends neither bucket.
func activationPercent(session nav.SessionState, current AppState, now time.Time) int {
	foreground := session.Foreground.Accumulated()
	background := session.Background.Accumulated()
	switch current {
	case AppStateForeground:
		foreground += sinceBucket(session.Foreground, now)
	case AppStateBackground:
		background += sinceBucket(session.Background, now)
	}
	return percent(foreground, foreground+background)
}

func sinceBucket(bucket nav.TimeBucket, now time.Time) time.Duration {
	if bucket.Since.IsZero() || now.Before(bucket.Since) {
		return 0
	}
	return now.Sub(bucket.Since)
}

// percent truncates to an integer and defaults to 100 on a zero denominator.
func percent(part, total time.Duration) int {
	if total <= 0 {
		return 100
	}
	p := int(float64(part) / float64(total) * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// roundWhole rounds half away from zero; truncWhole drops the fraction.
// Route-level fields use the former, step-level fields the latter.
func roundWhole(v float64) int {
	return int(math.Round(v))
}

func truncWhole(v float64) int {
	return int(math.Trunc(v))
}
