package shell

import "strings"

// launchers run another program named in their arguments.
var launchers = map[string]bool{
	"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true, "fish": true,
	"env": true, "xargs": true, "sudo": true, "doas": true, "su": true,
	"nohup": true, "nice": true, "timeout": true, "time": true, "watch": true,
	"exec": true, "eval": true, "command": true, "builtin": true,
	"chroot": true, "nsenter": true, "strace": true, "ltrace": true,
}

// findActions are find primaries that run programs or touch the filesystem.
var findActions = map[string]bool{
	"-exec": true, "-execdir": true, "-ok": true, "-okdir": true,
	"-delete": true, "-fprint": true, "-fprint0": true, "-fprintf": true, "-fls": true,
}

// CommandRoot is the key the allow list is matched against. A bare program name
// is its own key. A path, a launcher, or arguments that make a read-only program
// write are keyed on the whole command line, which no configured name can match,
// so an allowance for them covers that exact invocation only.
func (r *RunCommandRequest) CommandRoot() string {
	if len(r.Command) == 0 {
		return ""
	}
	name := r.Command[0]
	if strings.ContainsAny(name, `/\`) || escapes(name, r.Command[1:]) {
		return FormatCommand(r.Command)
	}
	return name
}

func escapes(name string, args []string) bool {
	if launchers[name] {
		// bare env only prints the environment
		return name != "env" || len(args) > 0
	}
	switch name {
	case "find":
		for _, a := range args {
			if findActions[a] {
				return true
			}
		}
	case "sort", "tree":
		for _, a := range args {
			if a == "-o" || strings.HasPrefix(a, "--output") || (name == "sort" && strings.HasPrefix(a, "-o")) {
				return true
			}
		}
	case "uniq":
		// uniq INPUT OUTPUT writes OUTPUT
		return len(positional(args)) > 1
	case "date":
		for _, a := range args {
			if a == "-s" || strings.HasPrefix(a, "--set") {
				return true
			}
		}
		for _, a := range positional(args) {
			if !strings.HasPrefix(a, "+") {
				return true
			}
		}
	case "hostname":
		for _, a := range args {
			if a == "-F" || strings.HasPrefix(a, "--file") {
				return true
			}
		}
		return len(positional(args)) > 0
	}
	return false
}

func positional(args []string) []string {
	var out []string
	for i, a := range args {
		if a == "--" {
			return append(out, args[i+1:]...)
		}
		if a == "-" || !strings.HasPrefix(a, "-") {
			out = append(out, a)
		}
	}
	return out
}
