package ensue

// DefaultPrelude is evaluated into the global frame of every new Runtime.
const DefaultPrelude = `
let abs fn x
    if
        l x 0
        return
            sub 0 x
    return x

let max fn a b
    if
        l a b
        return b
    return a

let min fn a b
    if
        l b a
        return b
    return a
`
