package contracts

// Pipeline Stage 정의 (SSOT)
// 모든 로그와 메트릭 라벨은 이 상수를 사용해야 함
//
// 파이프라인 흐름:
//   Fetch → Normalize → Rank → Allocate → Project → Render

// Stage represents a pipeline stage
type Stage string

const (
	// StageFetch: 외부 시세/카탈로그 수집
	// 위치: internal/external/, internal/marketdata/, internal/catalogue/
	StageFetch Stage = "FETCH"

	// StageNormalize: 원천 데이터 → AssetRecord
	// 위치: internal/normalize/
	StageNormalize Stage = "NORMALIZE"

	// StageRank: 자산군별 Top N 선별
	// 위치: internal/selection/
	StageRank Stage = "RANK"

	// StageAllocate: 균등 배분
	// 위치: internal/portfolio/
	StageAllocate Stage = "ALLOCATE"

	// StageProject: 30일 복리 투영
	// 위치: internal/projection/
	StageProject Stage = "PROJECT"

	// StageRender: 리포트 출력
	// 위치: internal/render/
	StageRender Stage = "RENDER"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// Description returns a short description of the stage
func (s Stage) Description() string {
	switch s {
	case StageFetch:
		return "시세/카탈로그 수집"
	case StageNormalize:
		return "자산 레코드 정규화"
	case StageRank:
		return "자산군별 Top N"
	case StageAllocate:
		return "균등 배분"
	case StageProject:
		return "30일 성장 투영"
	case StageRender:
		return "리포트 출력"
	default:
		return "알 수 없음"
	}
}

// AllStages returns all pipeline stages in order
func AllStages() []Stage {
	return []Stage{
		StageFetch,
		StageNormalize,
		StageRank,
		StageAllocate,
		StageProject,
		StageRender,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// StageResult records the outcome of one stage execution
type StageResult struct {
	Stage       Stage  `json:"stage"`
	Success     bool   `json:"success"`
	InputCount  int    `json:"input_count"`
	OutputCount int    `json:"output_count"`
	Duration    int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}
