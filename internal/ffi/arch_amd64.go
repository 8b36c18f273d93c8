package ffi

// HostArch is the architecture this binary was built for.
const HostArch = ArchX86_64
