// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ProjectFileNotFoundId Id = iota + 1
	ProjectFileParseErrorId
	InterfaceNotFoundId
	InterfaceParseErrorId
	ToolchainMissingId
	NdkNotFoundId
	ContainerEngineNotFoundId
	BuildFailedId
	IncompleteBundleId
	SymbolMismatchId
	ConfigLoadFailedId
	AppleToolsMissingId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	projectFileNotFoundIssue = &Issue{
		id: ProjectFileNotFoundId,
		mdMsg: `
# No svbind.cue found!

We searched for a project file but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. Path passed via --project
2. Current directory
3. Parent directories up to the repository root

## Things you can try:
- Create a project file next to your Cargo.toml:
~~~
$ svbind init
~~~

- Or run from the SDK checkout:
~~~
$ cd /path/to/your/sdk
$ svbind triples
~~~`,
	}

	projectFileParseErrorIssue = &Issue{
		id: ProjectFileParseErrorId,
		mdMsg: `
# Failed to parse svbind.cue!

Your project file contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- A triple that is not in the supported set
- Missing required fields (sdk.crate_dir, sdk.iface)

## Things you can try:
- Check the error message above for the specific field path
- List the triples this tool can build for:
~~~
$ svbind triples
~~~

## Example of a valid project file:
~~~cue
sdk: {
	crate_dir: "./bindings-ffi"
	iface:     "./bindings-ffi/vaults.iface.cue"
}

android: {
	package: "io.smartvaults.sdk"
}
~~~`,
	}

	interfaceNotFoundIssue = &Issue{
		id: InterfaceNotFoundId,
		mdMsg: `
# Interface definition not found!

The project file points at an interface definition (*.iface.cue) that does
not exist.

## Things you can try:
- Check the sdk.iface path in svbind.cue
- Scaffold a starter definition:
~~~
$ svbind init
~~~`,
	}

	interfaceParseErrorIssue = &Issue{
		id: InterfaceParseErrorId,
		mdMsg: `
# Failed to parse the interface definition!

The *.iface.cue file contains syntax errors, unknown type references, or
signatures the generators cannot express.

## Common issues:
- A field or parameter referencing an undeclared type
- An object handle stored inside a record field
- A constructor declaring a return type
- A callback method that returns a value or throws

## Things you can try:
- Check the error message above; it names the exact declaration
- Declare the missing enum/record/object before referencing it

## Example of a valid declaration:
~~~cue
namespace: "smartvaults"

enums: [{
	name: "Network"
	variants: ["bitcoin", "testnet", "signet", "regtest"]
}]

functions: [
	{name: "lib_version", returns: "string"},
]
~~~`,
	}

	toolchainMissingIssue = &Issue{
		id: ToolchainMissingId,
		mdMsg: `
# Build toolchain is incomplete!

One or more tools required for the requested targets are missing.

## Tools we look for:
- **cargo** and **rustup** on PATH
- A **rust std** component for every requested target triple
- The **Android NDK** for android targets
- **Xcode command line tools** (lipo, xcodebuild) for apple targets

## Things you can try:
- Install everything for your configured targets in one go:
~~~
$ svbind setup
~~~

- Verify without installing:
~~~
$ svbind setup --check
~~~

- Install a single target manually:
~~~
$ rustup target add aarch64-linux-android
~~~`,
		extLinks: []HttpLink{"https://rustup.rs"},
	}

	ndkNotFoundIssue = &Issue{
		id: NdkNotFoundId,
		mdMsg: `
# Android NDK not found!

Android targets need the NDK's clang cross-compilers, but we could not
locate an NDK installation.

## Locations we check (in order):
1. android.ndk_home in svbind.cue
2. The ANDROID_NDK_HOME environment variable
3. ndk/<version> under ANDROID_HOME

## Things you can try:
- Point the build at your NDK:
~~~
$ export ANDROID_NDK_HOME=$HOME/Android/Sdk/ndk/26.1.10909125
~~~

- Or pin it in svbind.cue:
~~~cue
android: {
	ndk_home: "/opt/android-ndk-r26b"
}
~~~

- Or build android targets inside a container that ships the NDK:
~~~cue
build: {
	in_container: true
}
~~~`,
		extLinks: []HttpLink{"https://developer.android.com/ndk/downloads"},
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Containerized builds are enabled but no container engine is available.

## Supported container engines:
- **Podman** (recommended for rootless containers)
- **Docker**

## Things you can try:
- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `
  - Windows: Download from https://podman.io

- Install Docker:
  - https://docs.docker.com/get-docker/

- Or build on the host instead:
~~~cue
build: {
	in_container: false
}
~~~

- Configure your preferred engine in the machine config:
~~~cue
container_engine: "podman"  // or "docker"
~~~`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Native build failed!

cargo exited with an error while compiling one of the requested targets.

## Common causes:
- A compile error in the crate itself
- A missing rust std component for the target triple
- A linker that cannot produce the target's binary format
- Out-of-date Cargo.lock with --locked builds

## Things you can try:
- Read the captured compiler output above; it is the real error
- Re-run the toolchain check:
~~~
$ svbind setup --check
~~~

- Build just the failing triple to iterate faster:
~~~
$ svbind bind kotlin --triple aarch64-linux-android
~~~`,
	}

	incompleteBundleIssue = &Issue{
		id: IncompleteBundleId,
		mdMsg: `
# Bundle is incomplete!

Platform assembly needs one built library per configured triple, but at
least one is missing from the build output.

## Things you can try:
- Build everything first, then assemble:
~~~
$ svbind bind kotlin
$ svbind assemble android
~~~

- Check which triples the platform expects:
~~~
$ svbind triples
~~~

- If you trimmed the triple list in svbind.cue, remove stale artifacts:
~~~
$ svbind clean
~~~`,
	}

	symbolMismatchIssue = &Issue{
		id: SymbolMismatchId,
		mdMsg: `
# Exported symbols do not match the interface definition!

A built library does not export every symbol the interface declares, so
the generated bindings would fail at load time.

## Common causes:
- The crate's FFI layer is older than the interface definition
- A symbol renamed on one side but not the other
- Link-time stripping removing exports

## Things you can try:
- Rebuild the libraries after changing the interface definition:
~~~
$ svbind bind kotlin
~~~

- Compare the declared and exported lists above; missing names are listed
- Confirm the crate marks every entry point #[no_mangle] and extern "C"`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the svbind machine configuration file.

## Configuration file locations:
- Linux: ~/.config/svbind/config.cue
- macOS: ~/Library/Application Support/svbind/config.cue
- Windows: %APPDATA%\svbind\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ svbind config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/svbind/config.cue
~~~

## Example configuration:
~~~cue
container_engine: "podman"

build: {
	in_container: false
	jobs:         4
}

ui: {
	color_scheme: "auto"
	verbose: false
}
~~~`,
	}

	appleToolsMissingIssue = &Issue{
		id: AppleToolsMissingId,
		mdMsg: `
# Apple build tools not found!

Assembling an XCFramework needs lipo and xcodebuild, which are only
available on macOS with the Xcode command line tools installed.

## Things you can try:
- Install the command line tools:
~~~
$ xcode-select --install
~~~

- Run the apple assembly step on a macOS machine
- Android and python distributables do not need Xcode:
~~~
$ svbind assemble android
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- Trying to write bundles to a protected directory
- Container engine requires elevated permissions
- The output directory is owned by another user (e.g. created by a rootful container)

## Things you can try:
- Check file/directory permissions on the output directory
- For containers, ensure you're in the docker/podman group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Use rootless containers with Podman
- Run svbind from a directory you own`,
	}

	issues = map[Id]*Issue{
		projectFileNotFoundIssue.Id():     projectFileNotFoundIssue,
		projectFileParseErrorIssue.Id():   projectFileParseErrorIssue,
		interfaceNotFoundIssue.Id():       interfaceNotFoundIssue,
		interfaceParseErrorIssue.Id():     interfaceParseErrorIssue,
		toolchainMissingIssue.Id():        toolchainMissingIssue,
		ndkNotFoundIssue.Id():             ndkNotFoundIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		buildFailedIssue.Id():             buildFailedIssue,
		incompleteBundleIssue.Id():        incompleteBundleIssue,
		symbolMismatchIssue.Id():          symbolMismatchIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		appleToolsMissingIssue.Id():       appleToolsMissingIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
