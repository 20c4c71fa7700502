// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package env

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const binJava = "java"

// launcherName returns the java launcher filename for the resolver's platform.
func (r *Resolver) launcherName() string {
	if r.goos == "windows" {
		return "java.exe"
	}
	return binJava
}

// JavaSearchRoots returns the install roots walked when java is not on PATH,
// in search order.
func (r *Resolver) JavaSearchRoots() []string {
	switch r.goos {
	case "windows":
		pf := r.getenv("ProgramFiles")
		if pf == "" {
			pf = `C:\Program Files`
		}
		return []string{
			filepath.Join(pf, "Java"),
			filepath.Join(pf, "Zulu"),
			filepath.Join(pf, "AdoptOpenJDK"),
			filepath.Join(pf, "OpenJDK"),
			`C:\Program Files`,
			`C:\Program Files (x86)`,
		}
	case "darwin":
		return []string{"/Library/Java/JavaVirtualMachines"}
	default:
		return []string{"/usr/lib/jvm", "/opt/java", "/usr/java"}
	}
}

// FindJavaExecutable returns the java launcher to use: java on PATH first,
// then $JAVA_HOME/bin, then the first launcher found walking the install
// roots in order. It returns "" when no launcher exists.
func (r *Resolver) FindJavaExecutable() string {
	if p, err := r.exec.LookPath(binJava); err == nil {
		return p
	}

	launcher := r.launcherName()
	if home := r.getenv("JAVA_HOME"); home != "" {
		p := filepath.Join(home, "bin", launcher)
		if isFile(r.fs, p) {
			return p
		}
	}

	for _, root := range r.JavaSearchRoots() {
		if ok, _ := afero.DirExists(r.fs, root); !ok {
			continue
		}
		var match string
		_ = afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil || info == nil || info.IsDir() {
				return nil
			}
			if info.Name() == launcher {
				match = path
				return errFound
			}
			return nil
		})
		if match != "" {
			return match
		}
	}
	return ""
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
