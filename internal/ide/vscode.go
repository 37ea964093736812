package ide

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const (
	vscodeDirectoryConstant    = ".vscode"
	tasksFileNameConstant      = "tasks.json"
	tasksSchemaVersionConstant = "2.0.0"
	shellTaskTypeConstant      = "shell"
	makeCommandConstant        = "make"
	buildTaskLabelTemplate     = "Build (%s)"
	cleanTaskLabelConstant     = "Clean"
	buildGroupKindConstant     = "build"
	gccProblemMatcherConstant  = "$gcc"
	parallelJobsFlagConstant   = "-j"
	configArgumentTemplate     = "config=%s"
	cleanTargetConstant        = "clean"
	jsonIndentConstant         = "  "
	directoryModeConstant      = 0o755
	fileModeConstant           = 0o644
	vscodeConfigFailedTemplate = "unable to write %s: %w"
	vscodeConfigEncodeTemplate = "unable to encode %s: %w"
)

type taskGroup struct {
	Kind      string `json:"kind"`
	IsDefault bool   `json:"isDefault"`
}

type task struct {
	Label          string     `json:"label"`
	Type           string     `json:"type"`
	Command        string     `json:"command"`
	Args           []string   `json:"args"`
	Group          *taskGroup `json:"group,omitempty"`
	ProblemMatcher []string   `json:"problemMatcher"`
}

type tasksDocument struct {
	Version string `json:"version"`
	Tasks   []task `json:"tasks"`
}

// TasksFilePath is where WriteVSCodeConfig writes, relative to the workspace.
func TasksFilePath() string {
	return path.Join(vscodeDirectoryConstant, tasksFileNameConstant)
}

// WriteVSCodeConfig writes .vscode/tasks.json with a default build task for
// buildConfig and a clean task, both driving the generated makefiles.
func WriteVSCodeConfig(fileSystem billy.Filesystem, buildConfig string) error {
	configName := strings.ToLower(strings.TrimSpace(buildConfig))
	if len(configName) == 0 {
		configName = strings.ToLower(BuildConfigDebug)
	}

	document := tasksDocument{
		Version: tasksSchemaVersionConstant,
		Tasks: []task{
			{
				Label:          fmt.Sprintf(buildTaskLabelTemplate, configName),
				Type:           shellTaskTypeConstant,
				Command:        makeCommandConstant,
				Args:           []string{parallelJobsFlagConstant, fmt.Sprintf(configArgumentTemplate, configName)},
				Group:          &taskGroup{Kind: buildGroupKindConstant, IsDefault: true},
				ProblemMatcher: []string{gccProblemMatcherConstant},
			},
			{
				Label:          cleanTaskLabelConstant,
				Type:           shellTaskTypeConstant,
				Command:        makeCommandConstant,
				Args:           []string{cleanTargetConstant},
				ProblemMatcher: []string{},
			},
		},
	}

	tasksPath := TasksFilePath()
	encoded, encodeError := json.MarshalIndent(document, "", jsonIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(vscodeConfigEncodeTemplate, tasksPath, encodeError)
	}
	if mkdirError := fileSystem.MkdirAll(vscodeDirectoryConstant, directoryModeConstant); mkdirError != nil {
		return fmt.Errorf(vscodeConfigFailedTemplate, tasksPath, mkdirError)
	}
	if writeError := util.WriteFile(fileSystem, tasksPath, append(encoded, '\n'), fileModeConstant); writeError != nil {
		return fmt.Errorf(vscodeConfigFailedTemplate, tasksPath, writeError)
	}
	return nil
}
