package analyzer

import "context"

// LivenessChecks itemizes the anti-spoofing signals behind a liveness outcome.
type LivenessChecks struct {
	FaceDetected    bool `json:"face_detected"`
	BlinkDetected   bool `json:"blink_detected"`
	HeadMovement    bool `json:"head_movement"`
	TextureAnalysis bool `json:"texture_analysis"`
}

// LivenessResult is the outcome of anti-spoofing analysis on a biometric
// sample.
type LivenessResult struct {
	Passed     bool
	Confidence float64
	Checks     LivenessChecks
}

// BiometricAnalyzer performs liveness detection and face similarity scoring.
type BiometricAnalyzer interface {
	CheckLiveness(ctx context.Context, sample []byte) (LivenessResult, error)

	// CompareFaces returns a similarity score in [0,1].
	CompareFaces(ctx context.Context, sampleA, sampleB []byte) (float64, error)
}

// StaticBiometricAnalyzer is the placeholder biometric analyzer. Face
// detection degrades to an image-decodability check; blink, head movement,
// and texture signals are assumed to pass; similarity is a fixed high score.
type StaticBiometricAnalyzer struct{}

func NewStaticBiometricAnalyzer() *StaticBiometricAnalyzer {
	return &StaticBiometricAnalyzer{}
}

func (a *StaticBiometricAnalyzer) CheckLiveness(_ context.Context, sample []byte) (LivenessResult, error) {
	if !decodable(sample) {
		return LivenessResult{}, ErrUndecodableImage
	}

	checks := LivenessChecks{
		FaceDetected:    true,
		BlinkDetected:   true,
		HeadMovement:    true,
		TextureAnalysis: true,
	}
	passed := checks.FaceDetected && checks.BlinkDetected && checks.HeadMovement && checks.TextureAnalysis

	confidence := 0.4
	if passed {
		confidence = 0.92
	}
	return LivenessResult{Passed: passed, Confidence: confidence, Checks: checks}, nil
}

func (a *StaticBiometricAnalyzer) CompareFaces(_ context.Context, sampleA, _ []byte) (float64, error) {
	if !decodable(sampleA) {
		return 0, ErrUndecodableImage
	}
	return 0.90, nil
}
