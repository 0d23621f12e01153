package version

// CliVersion is the version reported by `skypipe version`.
const CliVersion = "0.3.0"
