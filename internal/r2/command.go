package r2

// QuietFlag enables quiet mode with null-byte-terminated responses.
//
// This flag and the null-terminated frame reader in internal/subprocess are
// one indivisible contract: the reader only works against a child launched
// with this flag, and the flag is only useful to a reader that frames on
// null bytes. It is always passed and never configurable.
const QuietFlag = "-q0"

// QuitCommand asks radare2 to exit immediately without prompting.
const QuitCommand = "q!"

// BuildArgs constructs the radare2 command arguments: the quiet-mode flag,
// any caller-supplied extra arguments, then the target as the final
// positional argument.
func BuildArgs(target string, extraArgs []string) []string {
	args := make([]string, 0, len(extraArgs)+2)
	args = append(args, QuietFlag)
	args = append(args, extraArgs...)
	args = append(args, target)

	return args
}
