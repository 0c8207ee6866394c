package rootnroll

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// 通用类型
// ---------------------------------------------------------------------------

// ID 资源标识，兼容 JSON 数字和字符串两种形式。
type ID string

// String 实现 fmt.Stringer。
func (id ID) String() string { return string(id) }

// IDFromInt 由整数构造 ID。
func IDFromInt(n int64) ID { return ID(strconv.FormatInt(n, 10)) }

// MarshalJSON 全部由数字组成且没有前导 0 的 ID 编码为 JSON 数字，其余编码为字符串。
func (id ID) MarshalJSON() ([]byte, error) {
	if id != "" && isDigits(string(id)) && (id == "0" || id[0] != '0') {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON 接受 JSON 数字、字符串或 null。
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Time 服务端返回的时间，兼容带或不带时区的 ISO 8601 格式。
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid time %q", s)
}

// MarshalJSON 实现 json.Marshaler。
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// ---------------------------------------------------------------------------
// 镜像
// ---------------------------------------------------------------------------

// Image 创建服务器时使用的系统镜像。
type Image struct {
	ID          ID     `json:"id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ---------------------------------------------------------------------------
// 服务器
// ---------------------------------------------------------------------------

// ServerStatus 服务器状态。
type ServerStatus string

// 服务器状态常量。
const (
	ServerStatusBuild  ServerStatus = "BUILD"
	ServerStatusActive ServerStatus = "ACTIVE"
	ServerStatusError  ServerStatus = "ERROR"
)

// DefaultServerMemory 创建服务器时默认分配的内存（MB）。
const DefaultServerMemory = 64

// Server 远程虚拟服务器。
type Server struct {
	ID      ID           `json:"id"`
	Status  ServerStatus `json:"status"`
	ImageID ID           `json:"image_id,omitempty"`
	Memory  int          `json:"memory,omitempty"`

	CreatedAt *Time `json:"created_at,omitempty"`
}

// ServerPage 服务器分页列表。
type ServerPage struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  []Server `json:"results"`
}

// CreateServerParams 创建服务器的请求参数。
type CreateServerParams struct {
	// ImageID 镜像 ID（必填）。
	ImageID ID `json:"image_id" validate:"required"`

	// Memory 内存大小（MB），为 0 时使用 DefaultServerMemory。
	Memory int `json:"memory" validate:"gte=0"`
}

// ---------------------------------------------------------------------------
// 终端
// ---------------------------------------------------------------------------

// Terminal 连接到 ACTIVE 服务器的交互式终端。
type Terminal struct {
	ID       ID                     `json:"id"`
	ServerID ID                     `json:"server_id"`
	Config   map[string]interface{} `json:"config,omitempty"`
}

type createTerminalRequest struct {
	ServerID ID `json:"server_id" validate:"required"`
}

// ---------------------------------------------------------------------------
// 沙箱
// ---------------------------------------------------------------------------

// SandboxStatus 沙箱状态。
type SandboxStatus string

// 沙箱状态常量。
const (
	SandboxStatusPending    SandboxStatus = "pending"
	SandboxStatusRunning    SandboxStatus = "running"
	SandboxStatusTerminated SandboxStatus = "terminated"
	SandboxStatusKilled     SandboxStatus = "killed"
	SandboxStatusFailed     SandboxStatus = "failed"
)

// IsTerminated 沙箱是否已经结束运行。
func (s SandboxStatus) IsTerminated() bool {
	switch s {
	case SandboxStatusTerminated, SandboxStatusKilled, SandboxStatusFailed:
		return true
	}
	return false
}

// Sandbox 一次沙箱代码执行。
type Sandbox struct {
	ID       ID            `json:"id"`
	Status   SandboxStatus `json:"status"`
	Profile  string        `json:"profile,omitempty"`
	Command  *string       `json:"command,omitempty"`
	ExitCode *int          `json:"exit_code"`
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr,omitempty"`
	// Timeout 执行是否因超出时间限制而被终止。
	Timeout bool `json:"timeout"`
}

// IsTerminated 沙箱是否已经结束（正常结束、被终止或超时）。
func (s *Sandbox) IsTerminated() bool {
	return s.Status.IsTerminated() || s.Timeout
}

// SandboxFile 放入沙箱的文件，Content 为 base64 编码的内容。
type SandboxFile struct {
	Name    string `json:"name" validate:"required"`
	Content string `json:"content"`
}

// NewSandboxFile 对 data 进行 base64 编码并构造 SandboxFile。
func NewSandboxFile(name string, data []byte) SandboxFile {
	return SandboxFile{Name: name, Content: base64.StdEncoding.EncodeToString(data)}
}

// SandboxLimits 沙箱资源限制。
type SandboxLimits struct {
	// CPUTime CPU 时间（秒）。
	CPUTime int `json:"cputime,omitempty" validate:"gte=0"`
	// RealTime 墙上时间（秒）。
	RealTime int `json:"realtime,omitempty" validate:"gte=0"`
	// Memory 内存（MB）。
	Memory int `json:"memory,omitempty" validate:"gte=0"`
}

// CreateSandboxParams 创建沙箱的请求参数。
type CreateSandboxParams struct {
	// Profile 沙箱环境配置名称（必填），如 "linux-bootstrap"。
	Profile string `validate:"required"`

	// Command 要执行的命令，可选。
	Command string

	// Files 执行前放入沙箱的文件，可选。
	Files []SandboxFile `validate:"dive"`

	// Limits 资源限制，可选。
	Limits *SandboxLimits
}

type createSandboxRequest struct {
	Profile string         `json:"profile"`
	Command *string        `json:"command"`
	Files   []SandboxFile  `json:"files"`
	Limits  *SandboxLimits `json:"limits"`
}

func (p *CreateSandboxParams) toRequest() createSandboxRequest {
	req := createSandboxRequest{
		Profile: p.Profile,
		Files:   p.Files,
		Limits:  p.Limits,
	}
	if p.Command != "" {
		command := p.Command
		req.Command = &command
	}
	if req.Files == nil {
		req.Files = []SandboxFile{}
	}
	if req.Limits == nil {
		req.Limits = &SandboxLimits{}
	}
	return req
}

// ---------------------------------------------------------------------------
// 检查任务
// ---------------------------------------------------------------------------

// CheckerJobStatus 检查任务状态。
type CheckerJobStatus string

// 检查任务状态常量。
const (
	CheckerJobStatusPending   CheckerJobStatus = "pending"
	CheckerJobStatusRunning   CheckerJobStatus = "running"
	CheckerJobStatusCompleted CheckerJobStatus = "completed"
	CheckerJobStatusFailed    CheckerJobStatus = "failed"
)

// IsReady 检查任务是否已经结束。
func (s CheckerJobStatus) IsReady() bool {
	return s == CheckerJobStatusCompleted || s == CheckerJobStatusFailed
}

// CheckerJobResult 检查任务结果。
type CheckerJobResult string

// 检查任务结果常量。
const (
	CheckerJobResultPassed CheckerJobResult = "passed"
	CheckerJobResultFailed CheckerJobResult = "failed"
)

// CheckerJob 针对服务器运行的自动化测试任务。
type CheckerJob struct {
	ID           ID               `json:"id"`
	Server       ID               `json:"server"`
	TestScenario string           `json:"test_scenario"`
	Status       CheckerJobStatus `json:"status"`
	Result       CheckerJobResult `json:"result,omitempty"`
	FinishedAt   *Time            `json:"finished_at,omitempty"`
}

// Passed 检查任务是否已完成且通过。
func (j *CheckerJob) Passed() bool {
	return j.Status == CheckerJobStatusCompleted && j.Result == CheckerJobResultPassed
}

type createCheckerJobRequest struct {
	Server       ID     `json:"server" validate:"required"`
	TestScenario string `json:"test_scenario" validate:"required"`
}
