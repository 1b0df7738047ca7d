package domain

// RoleManager is granted to callers that presented the manager passcode.
const RoleManager = "manager"
