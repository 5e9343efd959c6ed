package adapter

import (
	"fmt"
	"testing"

	"github.com/akolanti/BrandVoice/internal/domain/commonModels"
	"github.com/akolanti/BrandVoice/internal/domain/jobModel"
)

func TestToAPIResponse(t *testing.T) {
	tests := []struct {
		name        string
		job         jobModel.Job
		wantError   bool
		wantIngest  bool
		wantProfile bool
	}{
		{
			name:       "completed ingest",
			job:        jobModel.Job{Id: "j1", JobType: jobModel.JobTypeIngest, Status: jobModel.JobStatusComplete, JobPayload: jobModel.JobPayload{DocumentId: "d1", ChunkCount: 3}},
			wantIngest: true,
		},
		{
			name:        "failed profile rebuild",
			job:         jobModel.Job{Id: "j2", JobType: jobModel.JobTypeRebuildProfile, Status: jobModel.JobStatusError, Error: jobModel.JobError{Code: 503, Message: "completion model unavailable", Retry: true}},
			wantError:   true,
			wantProfile: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ToAPIResponse(tt.job)
			if (res.Error != nil) != tt.wantError {
				t.Fatalf("error presence = %v, want %v", res.Error != nil, tt.wantError)
			}
			if (res.Result.Ingest != nil) != tt.wantIngest || (res.Result.Profile != nil) != tt.wantProfile {
				t.Fatalf("unexpected result shape %+v", res.Result)
			}
			if tt.wantIngest && res.Result.Ingest.ChunkCount != 3 {
				t.Errorf("chunk count = %d", res.Result.Ingest.ChunkCount)
			}
			if tt.wantError && !res.Error.Retry {
				t.Error("retry flag lost")
			}
		})
	}
}

func TestToProfileResponse_DefaultsWhenMissing(t *testing.T) {
	res := ToProfileResponse("b1", commonModels.StyleProfile{}, false, nil)
	if !res.IsDefault || res.Profile.IsEmpty() {
		t.Errorf("expected neutral default, got %+v", res)
	}
	if res.Facts == nil {
		t.Error("facts should serialise as an empty list")
	}

	stored := commonModels.StyleProfile{Voice: commonModels.VoiceProfile{Tone: []string{"bold"}}}
	res = ToProfileResponse("b1", stored, true, []commonModels.MemoryFact{{Fact: "Founded in 1999"}})
	if res.IsDefault || res.Profile.Voice.Tone[0] != "bold" || res.Facts[0] != "Founded in 1999" {
		t.Errorf("unexpected response %+v", res)
	}
}

func TestToErrorResponse_HidesProviderDetail(t *testing.T) {
	err := fmt.Errorf("%w: googleapi 429 key=abc", commonModels.ErrRateLimited)
	res := ToErrorResponse("x", err)
	if res.Error.Code != 429 || res.Error.Message != "rate limited" || !res.Error.Retry {
		t.Errorf("unexpected %+v", res.Error)
	}
}
