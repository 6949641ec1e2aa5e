// 版本信息，BuildTime/GitCommit/GoVersion 在构建时通过 -ldflags "-X" 注入
package version

var (
	Version   = "0.4.0"
	BuildTime string
	GitCommit string
	GoVersion string
)

func GetVersion() string {
	return Version
}
