package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"sysyc/internal/project"
)

const maxSeedBytes = 64 << 10

const maxFuzzInput = 1 << 16

var programSeeds = []string{
	"",
	"int main() { return 0; }\n",
	"int main() { return -5; }\n",
	"int main() { return 1 + 2 * 3 - 4 / 2 % 3; }\n",
	"int main() { return !(1 < 2) || 3 >= 3 && 4 != 5; }\n",
	"int main() {\n  const int a = 3, b = 4;\n  return a * b + (a - b);\n}\n",
	"void f() { return; }\nint main() { ; { ; } return 7; }\n",
	"int main() { return 1 / 0; }\n",
	"int main() { return -2147483647 - 1; }\n",
	"/* block */ int main() { // line\n return 0x1F + 017; }\n",
	"int main() { return x; }\n",
	"int main() { return (1 + ; }\n",
	"int main( { return 1 }\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range programSeeds {
		f.Add([]byte(seed))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds adds every SysY source under the repository testdata.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || !project.IsSource(path) {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], "..."...)
}
