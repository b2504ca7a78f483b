package config

var Presets = map[string]*Config{
	// Full site build: execute everything, publish rendered markdown.
	"site": {
		SourceDir:   DefaultSourceDir,
		ScriptDir:   DefaultScriptDir,
		MarkdownDir: DefaultMarkdownDir,
		PublishDir:  DefaultPublishDir,
		Tool:        DefaultTool,
		Kernel:      DefaultKernel,
		Extension:   DefaultExtension,
		OnError:     OnErrorHalt,
	},
	// Draft build: keep going past broken notebooks, stage under build/.
	"draft": {
		SourceDir:   DefaultSourceDir,
		ScriptDir:   DefaultScriptDir,
		MarkdownDir: DefaultMarkdownDir,
		PublishDir:  "build/site",
		Tool:        DefaultTool,
		Kernel:      DefaultKernel,
		Extension:   DefaultExtension,
		OnError:     OnErrorContinue,
	},
	// CI smoke build with a per-notebook timeout.
	"ci": {
		SourceDir:   DefaultSourceDir,
		ScriptDir:   DefaultScriptDir,
		MarkdownDir: DefaultMarkdownDir,
		PublishDir:  "build/site",
		Tool:        DefaultTool,
		Kernel:      DefaultKernel,
		Extension:   DefaultExtension,
		OnError:     OnErrorHalt,
		TimeoutSec:  600,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
