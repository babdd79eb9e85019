// internal/shell/hook.go
package shell

// hookScript is sourced by the child zsh. Each hook emits an in-band OSC
// frame on the pty; the wrapper strips frames from the stream before they
// reach the user's terminal or the capture sink.
//
// Frames: ESC ] 7733 ; <kind> ; <payload> BEL
//   input  — every accepted input line (payload base64), from zshaddhistory
//   start  — a command about to execute (payload base64), from preexec
//   end    — the exit status of the command that just finished, from precmd
//
// interactive_comments keeps '#'-prefixed note lines from executing; the
// wrapper records them off the input frame.
const hookScript = `# termtrace session hooks
setopt interactive_comments

_termtrace_emit() {
  printf '\033]7733;%s;%s\007' "$1" "$2"
}

_termtrace_b64() {
  printf '%s' "$1" | base64 | tr -d '\n'
}

_termtrace_addhistory() {
  local line="${1%$'\n'}"
  [[ -n "$line" ]] && _termtrace_emit input "$(_termtrace_b64 "$line")"
  return 0
}

_termtrace_preexec() {
  _termtrace_emit start "$(_termtrace_b64 "$1")"
}

_termtrace_precmd() {
  _termtrace_emit end "$?"
}

autoload -Uz add-zsh-hook
add-zsh-hook zshaddhistory _termtrace_addhistory
add-zsh-hook preexec _termtrace_preexec
add-zsh-hook precmd _termtrace_precmd
`
